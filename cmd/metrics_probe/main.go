package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-skew/config"
	"order-skew/ladder"
	"order-skew/metrics"
)

// metrics_probe 周期性地扫过 0-100 的偏斜值并刷新计划指标，
// 用于在没有 runner 的情况下验证 Prometheus/Grafana 面板。
func main() {
	addr := flag.String("metricsAddr", ":9100", "Prometheus 指标监听地址")
	capital := flag.Float64("capital", 10000, "买入资金")
	price := flag.Float64("price", 100, "锚定价")
	step := flag.Float64("step", 10, "每次偏斜增量")
	interval := flag.Duration("interval", 5*time.Second, "刷新间隔")
	flag.Parse()

	metrics.StartMetricsServer(*addr)
	fmt.Printf("metrics_probe started at %s\n", *addr)

	pc := config.DefaultPlan()
	pc.Capital = *capital
	pc.Price = *price

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		observe(pc)
		select {
		case <-sig:
			return
		case <-ticker.C:
			pc.Skew += *step
			if pc.Skew > 100 {
				pc.Skew = 0
			}
		}
	}
}

func observe(pc config.PlanConfig) {
	start := time.Now()
	plan, _ := ladder.Compute(pc.Params(), nil)
	metrics.ObserveCompute(plan.Mode, time.Since(start))
	metrics.UpdatePlanMetrics(plan)
	fmt.Printf("skew=%.0f net=%.2f roi=%.2f%%\n", pc.Skew, plan.Summary.NetProfit, plan.Summary.ROI)
}
