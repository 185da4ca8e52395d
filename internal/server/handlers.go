package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"order-skew/config"
	"order-skew/export"
	"order-skew/infrastructure/logger"
	"order-skew/internal/store"
	"order-skew/inventory"
	"order-skew/ladder"
)

// API 暴露计划的读取、参数更新与导出接口。
type API struct {
	store *store.Store
	log   *logger.Logger
}

func NewAPI(st *store.Store, log *logger.Logger) *API {
	if log == nil {
		log = logger.NewNop()
	}
	return &API{store: st, log: log}
}

// PlanResponse 是 /api/plan 的返回体。
type PlanResponse struct {
	Config    config.PlanConfig `json:"config"`
	Plan      ladder.Plan       `json:"plan"`
	Label     string            `json:"skewLabel"`
	Warnings  []string          `json:"warnings,omitempty"`
	Valuation *Valuation        `json:"valuation,omitempty"`
}

// Valuation 计划有效持仓按标记价估值。
type Valuation struct {
	Mark       float64 `json:"mark"`
	Value      float64 `json:"value"`
	Unrealized float64 `json:"unrealized"`
}

// GetPlan GET /api/plan[?mark=price]
func (a *API) GetPlan(w http.ResponseWriter, r *http.Request) {
	c := a.store.Config()
	plan := a.store.Plan()
	resp := PlanResponse{Config: c, Plan: plan, Label: ladder.SkewLabel(c.Skew)}
	if v := r.URL.Query().Get("mark"); v != "" {
		mark, err := strconv.ParseFloat(v, 64)
		if err != nil || mark < 0 {
			writeError(w, http.StatusBadRequest, "mark must be a non-negative number")
			return
		}
		h := inventory.Holding{Quantity: plan.Summary.TotalQuantity, Cost: plan.Summary.CostBasis}
		value, pnl := h.Valuation(mark)
		resp.Valuation = &Valuation{Mark: mark, Value: value, Unrealized: pnl}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostPlan POST /api/plan，请求体为完整的 PlanConfig；缺省字段取当前值。
func (a *API) PostPlan(w http.ResponseWriter, r *http.Request) {
	c := a.store.Config()
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	plan, warnings, err := a.store.Apply(c)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Config: c, Plan: plan, Label: ladder.SkewLabel(c.Skew), Warnings: warnings})
}

// ToggleExecuted POST /api/plan/executed/{rung}
func (a *API) ToggleExecuted(w http.ResponseWriter, r *http.Request) {
	rung, err := strconv.Atoi(r.PathValue("rung"))
	if err != nil || rung < 1 {
		writeError(w, http.StatusBadRequest, "rung must be a positive integer")
		return
	}
	plan, err := a.store.ToggleExecuted(rung)
	if errors.Is(err, store.ErrNotSellOnly) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	c := a.store.Config()
	writeJSON(w, http.StatusOK, PlanResponse{Config: c, Plan: plan, Label: ladder.SkewLabel(c.Skew)})
}

// GetDepth GET /api/plan/depth
func (a *API) GetDepth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ladder.DepthSeries(a.store.Plan()))
}

// GetCSV GET /api/plan.csv
func (a *API) GetCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orderskew_plan.csv"`)
	if err := export.WritePlanCSV(w, a.store.Plan()); err != nil {
		a.log.LogError(err, map[string]interface{}{"route": "plan.csv"})
	}
}

// GetPreset GET /api/preset
func (a *API) GetPreset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, export.PresetFrom(a.store.Config()))
}

// PostPreset POST /api/preset，应用预设并重算。
func (a *API) PostPreset(w http.ResponseWriter, r *http.Request) {
	p, err := export.LoadPreset(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := p.Apply(a.store.Config())
	plan, warnings, err := a.store.Apply(c)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Config: c, Plan: plan, Label: ladder.SkewLabel(c.Skew), Warnings: warnings})
}

// Health GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
