package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"order-skew/ladder"
)

func TestUpdatePlanMetrics(t *testing.T) {
	plan := ladder.Plan{
		Buy:  make(ladder.Ladder, 3),
		Sell: make(ladder.Ladder, 2),
		Summary: ladder.Summary{
			NetProfit:     120.5,
			ROI:           12.05,
			AvgBuy:        90,
			AvgSell:       110,
			TotalFees:     1.5,
			TotalQuantity: 11,
		},
	}
	UpdatePlanMetrics(plan)

	if got := testutil.ToFloat64(PlanNetProfit); got != 120.5 {
		t.Errorf("Expected PlanNetProfit to be 120.5, got %f", got)
	}
	if got := testutil.ToFloat64(PlanROI); got != 12.05 {
		t.Errorf("Expected PlanROI to be 12.05, got %f", got)
	}
	if got := testutil.ToFloat64(PlanTotalQuantity); got != 11 {
		t.Errorf("Expected PlanTotalQuantity to be 11, got %f", got)
	}
	if got := testutil.ToFloat64(PlanRungs.WithLabelValues("buy")); got != 3 {
		t.Errorf("Expected 3 buy rungs, got %f", got)
	}
	if got := testutil.ToFloat64(PlanRungs.WithLabelValues("sell")); got != 2 {
		t.Errorf("Expected 2 sell rungs, got %f", got)
	}
}

func TestObserveCompute(t *testing.T) {
	before := testutil.ToFloat64(Recomputes.WithLabelValues("sell-only"))
	ObserveCompute(ladder.ModeSellOnly, 30*time.Microsecond)
	ObserveCompute(ladder.ModeSellOnly, 40*time.Microsecond)

	if got := testutil.ToFloat64(Recomputes.WithLabelValues("sell-only")); got != before+2 {
		t.Errorf("Expected sell-only recomputes to grow by 2, got %f", got-before)
	}
	if n := testutil.CollectAndCount(ComputeSeconds); n != 1 {
		t.Errorf("Expected one histogram series, got %d", n)
	}
}
