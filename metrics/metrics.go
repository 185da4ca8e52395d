// Package metrics provides Prometheus metrics for the ladder planner
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"order-skew/ladder"
)

var (
	// 最近一次计划的汇总
	PlanNetProfit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_plan_net_profit",
		Help: "Net profit of the most recent plan",
	})
	PlanROI = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_plan_roi_percent",
		Help: "ROI of the most recent plan in percent",
	})
	PlanAvgBuy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_plan_avg_buy_price",
		Help: "Average buy price of the most recent plan",
	})
	PlanAvgSell = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_plan_avg_sell_price",
		Help: "Average sell price of the most recent plan",
	})
	PlanTotalFees = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_plan_total_fees",
		Help: "Total fees of the most recent plan",
	})
	PlanTotalQuantity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_plan_total_quantity",
		Help: "Effective quantity of the most recent plan",
	})
	PlanRungs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orderskew_plan_rungs",
		Help: "Rung count per side of the most recent plan",
	}, []string{"side"})

	// 计算活动
	Recomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderskew_recompute_total",
		Help: "Plan recomputations by trading mode",
	}, []string{"mode"})
	ComputeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderskew_compute_seconds",
		Help:    "Plan computation latency",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
	ConfigReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderskew_config_reload_total",
		Help: "Config hot reload attempts by status",
	}, []string{"status"})
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderskew_ws_clients",
		Help: "Connected websocket clients",
	})
)

// UpdatePlanMetrics 用最新计划刷新汇总指标
func UpdatePlanMetrics(plan ladder.Plan) {
	s := plan.Summary
	PlanNetProfit.Set(s.NetProfit)
	PlanROI.Set(s.ROI)
	PlanAvgBuy.Set(s.AvgBuy)
	PlanAvgSell.Set(s.AvgSell)
	PlanTotalFees.Set(s.TotalFees)
	PlanTotalQuantity.Set(s.TotalQuantity)
	PlanRungs.WithLabelValues("buy").Set(float64(len(plan.Buy)))
	PlanRungs.WithLabelValues("sell").Set(float64(len(plan.Sell)))
}

// ObserveCompute 记录一次计算
func ObserveCompute(mode ladder.ModeKind, elapsed time.Duration) {
	Recomputes.WithLabelValues(string(mode)).Inc()
	ComputeSeconds.Observe(elapsed.Seconds())
}

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer 启动Prometheus指标服务器
func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
