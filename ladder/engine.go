package ladder

// Basis 卖出侧使用的有效持仓：数量、买入金额（不含费用）、买入费用。
type Basis struct {
	Quantity float64
	Spent    float64
	Fees     float64
}

// AvgPrice 有效买入均价，数量为 0 时为 0。
func (b Basis) AvgPrice() float64 {
	if b.Quantity <= 0 {
		return 0
	}
	return b.Spent / b.Quantity
}

// Compute 根据参数生成完整计划。
//
// baseline 为上一次的基线快照，可为 nil。只卖模式下若快照非空，买单阶梯直接取自快照；
// 其他模式在买单阶梯非空时返回新的快照，否则原样返回 baseline。
// Compute 不会失败：非法数值在 Sanitize 中归零，结果退化为空或全零的阶梯。
func Compute(params Params, baseline *Snapshot) (Plan, *Snapshot) {
	p := params.Sanitize()
	kind := p.Mode.Kind()
	plan := Plan{Mode: kind, Buy: Ladder{}, Sell: Ladder{}}
	if p.Rungs == 0 {
		return plan, baseline
	}

	buyPrices, sellPrices := buildPrices(p)

	var b Basis
	if kind == ModeSellOnly && !baseline.Empty() {
		plan.Buy = baseline.Ladder()
		b = Basis{Quantity: baseline.TotalQuantity, Spent: baseline.TotalSpent, Fees: baseline.TotalFees}
	} else {
		plan.Buy = sizeBuys(p, buyPrices)
		b = Basis{Quantity: plan.Buy.Volume(), Spent: plan.Buy.Value(), Fees: plan.Buy.Fees()}
	}

	if so, ok := p.Mode.(SellOnly); ok {
		b = sellOnlyBasis(so, plan.Buy, b)
	}

	if kind != ModeBuyOnly {
		sizes := sellSizes(p, plan.Buy, b.Quantity, sellPrices)
		plan.Sell = buildSells(p, sizes, sellPrices, b.AvgPrice())
	}

	plan.Summary = summarize(p, plan, b)

	next := baseline
	if kind != ModeSellOnly && len(plan.Buy) > 0 {
		next = newSnapshot(plan.Buy)
	}
	return plan, next
}

// sellOnlyBasis 只卖模式的成本来源：已成交档位 > 外部持仓 > 整个买单阶梯。
func sellOnlyBasis(m SellOnly, buy Ladder, whole Basis) Basis {
	if m.ExecutedCutoff > 0 {
		return ExecutedTotals(buy, m.ExecutedCutoff)
	}
	if m.Holding != nil && m.Holding.Quantity > 0 {
		return Basis{
			Quantity: m.Holding.Quantity,
			Spent:    m.Holding.Quantity * m.Holding.AveragePrice,
		}
	}
	return whole
}

// ExecutedTotals 汇总序号不超过 cutoff 且数量为正的买单档位，模拟只有这些档位成交。
func ExecutedTotals(buy Ladder, cutoff int) Basis {
	var b Basis
	for _, r := range buy {
		if r.Index > cutoff || r.Size <= 0 {
			continue
		}
		b.Quantity += r.Size
		b.Spent += r.Net
		b.Fees += r.Fee
	}
	return b
}

func summarize(p Params, plan Plan, b Basis) Summary {
	kind := p.Mode.Kind()
	sellFees := plan.Sell.Fees()
	sellNet := plan.Sell.Value()

	s := Summary{
		AvgBuy:          b.AvgPrice(),
		TotalFees:       b.Fees + sellFees,
		TotalQuantity:   b.Quantity,
		CostBasis:       b.Spent + b.Fees,
		BuyTotalValue:   plan.Buy.Value(),
		BuyTotalVolume:  plan.Buy.Volume(),
		SellTotalValue:  sellNet,
		SellTotalVolume: plan.Sell.Volume(),
	}
	if n := len(plan.Buy); n > 0 {
		s.LowestBuy = plan.Buy[n-1].Price
	}
	if n := len(plan.Sell); n > 0 {
		s.HighestSell = plan.Sell[n-1].Price
	}
	if kind == ModeBuyOnly {
		return s
	}
	// 只卖模式的成本只取已花费的净资金，买入费用不计入
	if kind == ModeSellOnly {
		s.CostBasis = b.Spent
	}

	if b.Quantity > 0 {
		s.AvgSell = sellNet / b.Quantity
	}
	s.NetProfit = sellNet - s.CostBasis
	if p.Fee.Settlement == External {
		s.NetProfit -= sellFees
	}
	if s.CostBasis > 0 {
		s.ROI = s.NetProfit / s.CostBasis * 100
	}
	return s
}
