package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"order-skew/infrastructure/logger"
)

// NewHandler 注册全部路由并套上请求日志中间件。hub 可为 nil。
func NewHandler(api *API, hub *Hub, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", Health)
	mux.HandleFunc("GET /api/plan", api.GetPlan)
	mux.HandleFunc("POST /api/plan", api.PostPlan)
	mux.HandleFunc("POST /api/plan/executed/{rung}", api.ToggleExecuted)
	mux.HandleFunc("GET /api/plan/depth", api.GetDepth)
	mux.HandleFunc("GET /api/plan.csv", api.GetCSV)
	mux.HandleFunc("GET /api/preset", api.GetPreset)
	mux.HandleFunc("POST /api/preset", api.PostPreset)
	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}
	return requestLogging(log)(mux)
}

func requestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack 让 websocket 升级可以穿过中间件。
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	return h.Hijack()
}
