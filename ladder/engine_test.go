package ladder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleParams() Params {
	return Params{
		Mode:   BuySell{Capital: 10000},
		Anchor: 100,
		Rungs:  10,
		Skew:   50,
		Range:  Range{Mode: RangeWidth, DepthPct: 25},
		Fee:    FeeModel{Kind: FeePercent, Value: 0.075, Settlement: Netted},
		Sizing: SkewWeighted,
	}
}

func TestCompute_ExampleScenario(t *testing.T) {
	plan, snap := Compute(exampleParams(), nil)
	require.Len(t, plan.Buy, 10)
	require.Len(t, plan.Sell, 10)
	require.NotNil(t, snap)
	assert.Equal(t, ModeBuySell, plan.Mode)

	assert.Less(t, plan.Buy[0].Price, 100.0)
	assert.Equal(t, 75.0, plan.Buy[9].Price)
	for i := 1; i < 10; i++ {
		assert.Greater(t, plan.Buy[i].Size, plan.Buy[i-1].Size, "buy size should grow away from anchor")
		assert.Equal(t, i+1, plan.Buy[i].Index)
	}

	assert.InDelta(t, 10000/1.00075, plan.Buy.Value(), 1e-6)
	assert.InDelta(t, 10000-10000/1.00075, plan.Buy.Fees(), 1e-6)
	assert.InDelta(t, 7.49, plan.Buy.Fees(), 0.005)
	assert.InDelta(t, 10000, plan.Summary.CostBasis, 1e-9)

	// 买卖模式按权重分配时卖单数量与买单一一对应
	for i := range plan.Sell {
		assert.Equal(t, plan.Buy[i].Size, plan.Sell[i].Size)
	}
	s := plan.Summary
	assert.InDelta(t, plan.Buy.Volume(), s.TotalQuantity, 1e-12)
	assert.InDelta(t, s.SellTotalValue-s.CostBasis, s.NetProfit, 1e-9)
	assert.InDelta(t, s.NetProfit/s.CostBasis*100, s.ROI, 1e-9)
	assert.InDelta(t, plan.Buy.Fees()+plan.Sell.Fees(), s.TotalFees, 1e-9)
	assert.Equal(t, 75.0, s.LowestBuy)
	assert.Equal(t, 125.0, s.HighestSell)
	assert.Greater(t, s.NetProfit, 0.0)
}

func TestCompute_Conservation(t *testing.T) {
	for _, skew := range []float64{0, 20, 50, 100} {
		for _, fee := range []FeeModel{
			{Kind: FeePercent, Value: 0.1, Settlement: Netted},
			{Kind: FeeFixed, Value: 1.5, Settlement: Netted},
			{},
		} {
			p := exampleParams()
			p.Skew = skew
			p.Fee = fee
			plan, _ := Compute(p, nil)
			total := plan.Buy.Value() + plan.Buy.Fees()
			assert.InDelta(t, 10000, total, 1e-7, "skew=%.0f fee=%+v", skew, fee)
		}
	}
}

func TestCompute_ConservationBeyondFullDepth(t *testing.T) {
	p := Params{
		Mode:   BuySell{Capital: 1000},
		Anchor: 100,
		Rungs:  4,
		Skew:   40,
		Range:  Range{Mode: RangeWidth, DepthPct: 150},
		Fee:    FeeModel{Kind: FeePercent, Value: 0.1},
	}
	plan, _ := Compute(p, nil)
	require.Len(t, plan.Buy, 4)
	assert.InDelta(t, 62.5, plan.Buy[0].Price, 1e-9)
	assert.InDelta(t, 25, plan.Buy[1].Price, 1e-9)
	for _, r := range plan.Buy[2:] {
		assert.Zero(t, r.Price)
		assert.Zero(t, r.Size)
		assert.Zero(t, r.Gross)
	}

	var total float64
	for _, r := range plan.Buy {
		total += r.Net + r.Fee
	}
	assert.InDelta(t, 1000, total, 1e-9)
	assert.InDelta(t, 1000, plan.Summary.CostBasis, 1e-9)
	assert.InDelta(t, plan.Buy.Volume(), plan.Sell.Volume(), 1e-9)

	// 两档有效价格按原始权重比例分配
	w := Weights(4, 40)
	assert.InDelta(t, w[1]/w[0], plan.Buy[1].Gross/plan.Buy[0].Gross, 1e-9)
}

func TestCompute_RunningAverages(t *testing.T) {
	plan, _ := Compute(exampleParams(), nil)
	var cumSize, cumNet float64
	for _, r := range plan.Buy {
		cumSize += r.Size
		cumNet += r.Net
		assert.InDelta(t, cumSize, r.CumSize, 1e-9)
		assert.InDelta(t, cumNet, r.CumNet, 1e-9)
		assert.InDelta(t, cumNet/cumSize, r.AvgPrice, 1e-9)
		assert.InDelta(t, r.Size*r.Price, r.Net, 1e-9)
		assert.InDelta(t, r.Net+r.Fee, r.Gross, 1e-9)
	}
	last := plan.Buy[len(plan.Buy)-1]
	assert.InDelta(t, plan.Summary.AvgBuy, last.AvgPrice, 1e-9)

	var cumProfit float64
	for _, r := range plan.Sell {
		want := r.Net - plan.Summary.AvgBuy*r.Size
		assert.InDelta(t, want, r.Profit, 1e-9)
		cumProfit += r.Profit
		assert.InDelta(t, cumProfit, r.CumProfit, 1e-9)
	}
}

func TestCompute_ZeroRungs(t *testing.T) {
	p := exampleParams()
	p.Rungs = 0
	prev := &Snapshot{Buy: Ladder{{Index: 1, Price: 90, Size: 1, Net: 90}}, TotalQuantity: 1, TotalSpent: 90}
	plan, snap := Compute(p, prev)
	assert.Empty(t, plan.Buy)
	assert.Empty(t, plan.Sell)
	assert.Equal(t, Summary{}, plan.Summary)
	assert.Same(t, prev, snap)
}

func TestCompute_ZeroCapital(t *testing.T) {
	p := exampleParams()
	p.Mode = BuySell{}
	plan, _ := Compute(p, nil)
	require.Len(t, plan.Buy, 10)
	for _, l := range []Ladder{plan.Buy, plan.Sell} {
		for _, r := range l {
			assert.Zero(t, r.Size)
			assert.Zero(t, r.Net)
			assert.Zero(t, r.Gross)
			assert.Zero(t, r.Fee)
		}
	}
	assert.Zero(t, plan.Summary.NetProfit)
	assert.Zero(t, plan.Summary.ROI)
}

func TestCompute_SellOnlyHolding(t *testing.T) {
	p := Params{
		Mode:   SellOnly{Holding: &Holding{Quantity: 50, AveragePrice: 80}},
		Anchor: 100,
		Rungs:  5,
		Range:  Range{Mode: RangeWidth, DepthPct: 20},
	}
	plan, snap := Compute(p, nil)
	assert.Nil(t, snap)
	s := plan.Summary
	assert.Equal(t, 80.0, s.AvgBuy)
	assert.InDelta(t, 120, s.HighestSell, 1e-9)
	assert.InDelta(t, 50, plan.Sell.Volume(), 1e-9)
	assert.InDelta(t, plan.Sell.Value()-50*80, s.NetProfit, 1e-9)
	// 平坦分配：每档 10 个，卖价 104..120
	assert.InDelta(t, 1600, s.NetProfit, 1e-6)
	assert.InDelta(t, 40, s.ROI, 1e-6)

	// 只卖模式下买单没有资金，数量为 0
	for _, r := range plan.Buy {
		assert.Zero(t, r.Size)
	}

	p.Skew = 60
	plan, _ = Compute(p, nil)
	assert.InDelta(t, plan.Sell.Value()-4000, plan.Summary.NetProfit, 1e-9)
	assert.InDelta(t, 50, plan.Sell.Volume(), 1e-9)
	for i := 1; i < 5; i++ {
		assert.Greater(t, plan.Sell[i].Size, plan.Sell[i-1].Size)
	}
}

func TestCompute_SellOnlyQuantityOnly(t *testing.T) {
	p := Params{
		Mode:   SellOnly{Holding: &Holding{Quantity: 50}},
		Anchor: 100,
		Rungs:  5,
		Range:  Range{Mode: RangeWidth, DepthPct: 20},
		Fee:    FeeModel{Kind: FeePercent, Value: 0.1},
	}
	plan, _ := Compute(p, nil)
	s := plan.Summary
	assert.InDelta(t, 50, plan.Sell.Volume(), 1e-9)
	assert.Equal(t, 50.0, s.TotalQuantity)
	assert.Zero(t, s.AvgBuy)
	assert.Zero(t, s.CostBasis)
	assert.Zero(t, s.ROI)
	assert.InDelta(t, plan.Sell.Value(), s.NetProfit, 1e-9)
	for _, r := range plan.Sell {
		assert.InDelta(t, r.Net, r.Profit, 1e-9)
	}
}

func TestCompute_SellOnlyWithoutBasis(t *testing.T) {
	p := exampleParams()
	p.Mode = SellOnly{}
	plan, snap := Compute(p, nil)
	assert.Nil(t, snap)
	require.Len(t, plan.Sell, 10)
	for _, r := range plan.Sell {
		assert.Zero(t, r.Size)
		assert.Zero(t, r.Profit)
	}
	assert.Zero(t, plan.Summary.NetProfit)
	assert.Zero(t, plan.Summary.ROI)
}

func TestCompute_SnapshotStability(t *testing.T) {
	first, snap := Compute(exampleParams(), nil)
	require.NotNil(t, snap)
	assert.Equal(t, first.Buy, snap.Buy)

	p := exampleParams()
	p.Mode = SellOnly{}
	p.Anchor = 140
	second, snap2 := Compute(p, snap)
	third, snap3 := Compute(p, snap2)

	assert.Same(t, snap, snap2)
	assert.Same(t, snap, snap3)
	assert.Equal(t, first.Buy, second.Buy)
	assert.Equal(t, second.Buy, third.Buy)

	// 返回的阶梯是副本
	second.Buy[0].Size = 999
	assert.NotEqual(t, 999.0, snap.Buy[0].Size)

	// 成本来自整个基线阶梯
	assert.InDelta(t, first.Summary.TotalQuantity, second.Summary.TotalQuantity, 1e-9)
	assert.InDelta(t, first.Summary.AvgBuy, second.Summary.AvgBuy, 1e-9)
	assert.InDelta(t, 140*1.25, second.Summary.HighestSell, 1e-9)

	// 只卖模式成本只取净花费，买入费用只计入总费用
	s := second.Summary
	assert.InDelta(t, 10000/1.00075, snap.TotalSpent, 1e-6)
	assert.InDelta(t, snap.TotalSpent, s.CostBasis, 1e-9)
	assert.InDelta(t, second.Sell.Value()-snap.TotalSpent, s.NetProfit, 1e-9)
	assert.InDelta(t, s.NetProfit/snap.TotalSpent*100, s.ROI, 1e-9)
	assert.InDelta(t, snap.TotalFees+second.Sell.Fees(), s.TotalFees, 1e-9)

	same := exampleParams()
	same.Mode = SellOnly{}
	atAnchor, _ := Compute(same, snap)
	assert.InDelta(t, 9992.5056, atAnchor.Summary.CostBasis, 1e-4)
	assert.InDelta(t, atAnchor.Sell.Value()-9992.505621, atAnchor.Summary.NetProfit, 1e-5)
	assert.InDelta(t, 4931.2071, atAnchor.Summary.NetProfit, 1e-3)

	// 新的买卖计算整体替换快照
	p2 := exampleParams()
	p2.Mode = BuySell{Capital: 500}
	_, snap4 := Compute(p2, snap)
	assert.NotSame(t, snap, snap4)
	assert.InDelta(t, 500, snap4.TotalSpent+snap4.TotalFees, 1e-9)
}

func TestCompute_ExecutedCutoff(t *testing.T) {
	full, snap := Compute(exampleParams(), nil)

	p := exampleParams()
	p.Mode = SellOnly{
		ExecutedCutoff: 3,
		Holding:        &Holding{Quantity: 1000, AveragePrice: 1},
	}
	plan, _ := Compute(p, snap)

	var qty, spent, fees float64
	for _, r := range full.Buy[:3] {
		qty += r.Size
		spent += r.Net
		fees += r.Fee
	}
	s := plan.Summary
	assert.InDelta(t, qty, s.TotalQuantity, 1e-9)
	assert.InDelta(t, spent/qty, s.AvgBuy, 1e-9)
	assert.InDelta(t, spent, s.CostBasis, 1e-9)
	assert.InDelta(t, 597.7324, s.CostBasis, 1e-3)
	assert.InDelta(t, ExecutedTotals(full.Buy, 3).Spent, s.CostBasis, 1e-12)
	assert.InDelta(t, qty, plan.Sell.Volume(), 1e-9)
	assert.InDelta(t, fees+plan.Sell.Fees(), s.TotalFees, 1e-9)
	assert.InDelta(t, plan.Sell.Value()-spent, s.NetProfit, 1e-9)
	assert.InDelta(t, (plan.Sell.Value()-spent)/spent*100, s.ROI, 1e-9)

	// 截止档超过阶梯长度时等同全部成交
	p.Mode = SellOnly{ExecutedCutoff: 50}
	plan, _ = Compute(p, snap)
	assert.InDelta(t, full.Buy.Volume(), plan.Summary.TotalQuantity, 1e-9)

	got := ExecutedTotals(full.Buy, 1)
	assert.Equal(t, full.Buy[0].Size, got.Quantity)
	assert.Equal(t, full.Buy[0].Net/full.Buy[0].Size, got.AvgPrice())
	assert.Zero(t, ExecutedTotals(Ladder{}, 4).Quantity)
}

func TestCompute_EqualQuantity(t *testing.T) {
	base := Params{
		Mode:   BuySell{Capital: 1000},
		Anchor: 100,
		Rungs:  4,
		Range:  Range{Mode: RangeWidth, DepthPct: 20},
		Sizing: EqualQuantity,
	}
	sumPrices := 95.0 + 90 + 85 + 80

	cases := []struct {
		name     string
		fee      FeeModel
		wantQty  float64
		wantCost float64
	}{
		{"no fee", FeeModel{}, 1000 / sumPrices, 1000},
		{"netted percent", FeeModel{Kind: FeePercent, Value: 0.1}, 1000 / (sumPrices * 1.001), 1000},
		{"netted fixed", FeeModel{Kind: FeeFixed, Value: 2}, (1000 - 8) / sumPrices, 1000},
		{"external percent", FeeModel{Kind: FeePercent, Value: 0.1, Settlement: External}, 1000 / sumPrices, 1001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			p.Fee = tc.fee
			plan, _ := Compute(p, nil)
			for _, r := range plan.Buy {
				assert.InDelta(t, tc.wantQty, r.Size, 1e-12)
			}
			assert.InDelta(t, tc.wantCost, plan.Summary.CostBasis, 1e-9)
			for _, r := range plan.Sell {
				assert.InDelta(t, plan.Buy.Volume()/4, r.Size, 1e-12)
			}
		})
	}

	// 资金不足以支付固定费用时数量为 0
	p := base
	p.Mode = BuySell{Capital: 5}
	p.Fee = FeeModel{Kind: FeeFixed, Value: 2}
	plan, _ := Compute(p, nil)
	for _, r := range plan.Buy {
		assert.Zero(t, r.Size)
		assert.Zero(t, r.Fee)
	}
}

func TestCompute_ExternalFees(t *testing.T) {
	p := exampleParams()
	p.Fee = FeeModel{Kind: FeePercent, Value: 0.2, Settlement: External}
	plan, _ := Compute(p, nil)

	assert.InDelta(t, 10000, plan.Buy.Value(), 1e-7)
	assert.InDelta(t, 20, plan.Buy.Fees(), 1e-9)
	s := plan.Summary
	assert.InDelta(t, 10020, s.CostBasis, 1e-7)
	for _, r := range plan.Sell {
		assert.Equal(t, r.Gross, r.Net)
		assert.InDelta(t, r.Gross*0.002, r.Fee, 1e-9)
	}
	assert.InDelta(t, s.SellTotalValue-s.CostBasis-plan.Sell.Fees(), s.NetProfit, 1e-9)
}

func TestCompute_FixedFeeCap(t *testing.T) {
	p := Params{
		Mode:   BuySell{Capital: 1},
		Anchor: 100,
		Rungs:  2,
		Range:  Range{Mode: RangeWidth, DepthPct: 10},
		Fee:    FeeModel{Kind: FeeFixed, Value: 5},
	}
	plan, _ := Compute(p, nil)
	for _, r := range plan.Buy {
		assert.Zero(t, r.Size)
		assert.InDelta(t, 0.5, r.Fee, 1e-12)
		assert.GreaterOrEqual(t, r.Net, 0.0)
	}

	p.Mode = SellOnly{Holding: &Holding{Quantity: 0.001, AveragePrice: 80}}
	plan, _ = Compute(p, nil)
	for _, r := range plan.Sell {
		assert.Equal(t, r.Gross, r.Fee)
		assert.Zero(t, r.Net)
	}
}

func TestCompute_BuyOnly(t *testing.T) {
	p := exampleParams()
	p.Mode = BuyOnly{Capital: 10000}
	plan, snap := Compute(p, nil)
	require.NotNil(t, snap)
	assert.Len(t, plan.Buy, 10)
	assert.Empty(t, plan.Sell)
	s := plan.Summary
	assert.Zero(t, s.NetProfit)
	assert.Zero(t, s.ROI)
	assert.Zero(t, s.AvgSell)
	assert.Zero(t, s.HighestSell)
	assert.InDelta(t, plan.Buy.Fees(), s.TotalFees, 1e-12)
	assert.InDelta(t, 10000, s.CostBasis, 1e-9)
}

func TestCompute_MalformedInputs(t *testing.T) {
	p := exampleParams()
	p.Mode = BuySell{Capital: math.NaN()}
	plan, _ := Compute(p, nil)
	assert.Zero(t, plan.Buy.Volume())

	p = exampleParams()
	p.Anchor = math.Inf(1)
	plan, _ = Compute(p, nil)
	require.Len(t, plan.Buy, 10)
	assert.Zero(t, plan.Buy.Volume())
	assert.Zero(t, plan.Summary.NetProfit)

	p = exampleParams()
	p.Rungs = -4
	plan, _ = Compute(p, nil)
	assert.Empty(t, plan.Buy)

	p = exampleParams()
	p.Mode = nil
	p.Rungs = MaxRungs * 3
	plan, _ = Compute(p, nil)
	assert.Len(t, plan.Buy, MaxRungs)
	assert.Zero(t, plan.Buy.Volume())

	p = exampleParams()
	p.Mode = &SellOnly{ExecutedCutoff: -2, Holding: &Holding{Quantity: math.Inf(1), AveragePrice: 5}}
	plan, _ = Compute(p, nil)
	assert.Equal(t, ModeSellOnly, plan.Mode)
	assert.Zero(t, plan.Sell.Volume())
}

func TestCompute_GeometricBuySell(t *testing.T) {
	p := exampleParams()
	p.Spacing = Geometric
	plan, _ := Compute(p, nil)
	for i := 1; i < len(plan.Buy); i++ {
		assert.Less(t, plan.Buy[i].Price, plan.Buy[i-1].Price)
		assert.Greater(t, plan.Sell[i].Price, plan.Sell[i-1].Price)
	}
	assert.Equal(t, 75.0, plan.Buy[9].Price)
	assert.Equal(t, 125.0, plan.Sell[9].Price)
	assert.InDelta(t, 10000, plan.Buy.Value()+plan.Buy.Fees(), 1e-7)
}

func TestDepthSeries(t *testing.T) {
	plan, _ := Compute(exampleParams(), nil)
	points := DepthSeries(plan)
	require.Len(t, points, 20)
	assert.Equal(t, Buy, points[0].Side)
	assert.InDelta(t, plan.Buy.Volume(), points[9].CumQty, 1e-9)
	assert.InDelta(t, plan.Sell.Value(), points[19].CumValue, 1e-9)

	plan.Mode = ModeSellOnly
	points = DepthSeries(plan)
	require.Len(t, points, 10)
	assert.Equal(t, Sell, points[0].Side)

	plan.Mode = ModeBuyOnly
	points = DepthSeries(plan)
	require.Len(t, points, 10)
	assert.Equal(t, Buy, points[9].Side)
}
