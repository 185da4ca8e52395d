package ladder

import "order-skew/inventory"

// sizeBuys 按资金与分配方式生成买单阶梯。
func sizeBuys(p Params, prices []float64) Ladder {
	n := len(prices)
	capital := p.capital()
	ladder := make(Ladder, n)

	var nets, fees, sizes []float64
	if p.Sizing == EqualQuantity {
		sizes, nets, fees = equalBuys(capital, prices, p.Fee)
	} else {
		sizes, nets, fees = weightedBuys(capital, prices, Weights(n, p.Skew), p.Fee)
	}

	var h inventory.Holding
	for i := range ladder {
		h.Add(sizes[i], nets[i])
		ladder[i] = Rung{
			Index:    i + 1,
			Side:     Buy,
			Price:    prices[i],
			Size:     sizes[i],
			Gross:    nets[i] + fees[i],
			Fee:      fees[i],
			Net:      nets[i],
			CumSize:  h.Quantity,
			CumNet:   h.Cost,
			AvgPrice: h.AvgPrice(),
		}
	}
	return ladder
}

// weightedBuys 资金按权重分配到各档，扣费后折算为数量。
// 价格非正的档位不参与分配，权重在其余档位上重新归一，资金总额不变。
func weightedBuys(capital float64, prices, weights []float64, fee FeeModel) (sizes, nets, fees []float64) {
	n := len(prices)
	sizes = make([]float64, n)
	nets = make([]float64, n)
	fees = make([]float64, n)
	var total float64
	for i, price := range prices {
		if price > 0 {
			total += weights[i]
		}
	}
	if capital <= 0 || total <= 0 {
		return
	}
	for i, price := range prices {
		if price <= 0 {
			continue
		}
		alloc := capital * weights[i] / total
		net, f := fee.splitBuy(alloc)
		if net <= 0 {
			fees[i] = f
			continue
		}
		sizes[i] = net / price
		nets[i] = net
		fees[i] = f
	}
	return
}

// equalBuys 每个有效档位买入相同数量 q。
// 内扣费用时先从资金中扣掉费用：固定费 capital-k*fee，百分比费 capital/(1+rate)。
func equalBuys(capital float64, prices []float64, fee FeeModel) (sizes, nets, fees []float64) {
	n := len(prices)
	sizes = make([]float64, n)
	nets = make([]float64, n)
	fees = make([]float64, n)

	active := 0
	sumPrices := 0.0
	for _, price := range prices {
		if price > 0 {
			active++
			sumPrices += price
		}
	}
	if active == 0 || capital <= 0 {
		return
	}

	var q float64
	switch {
	case fee.active() && fee.Settlement == Netted && fee.Kind == FeeFixed:
		q = (capital - float64(active)*fee.Value) / sumPrices
	case fee.active() && fee.Settlement == Netted:
		q = capital / (sumPrices * (1 + fee.rate()))
	default:
		q = capital / sumPrices
	}
	if q <= 0 {
		return
	}

	for i, price := range prices {
		if price <= 0 {
			continue
		}
		sizes[i] = q
		nets[i] = q * price
		fees[i] = fee.feeOn(nets[i])
	}
	return
}

// sellSizes 把有效持仓数量分配到卖单档位。
// 买卖模式下按权重分配时，第 i 档卖出第 i 档买入的数量。
func sellSizes(p Params, buy Ladder, effective float64, prices []float64) []float64 {
	n := len(prices)
	sizes := make([]float64, n)
	if effective <= 0 || n == 0 {
		return sizes
	}

	switch {
	case p.Sizing == EqualQuantity:
		active := 0
		for _, price := range prices {
			if price > 0 {
				active++
			}
		}
		if active == 0 {
			return sizes
		}
		share := effective / float64(active)
		for i, price := range prices {
			if price > 0 {
				sizes[i] = share
			}
		}
	case p.Mode.Kind() == ModeSellOnly || len(buy) != n:
		weights := Weights(n, p.Skew)
		total := sum(weights)
		for i, w := range weights {
			sizes[i] = effective * w / total
		}
	default:
		for i := range sizes {
			sizes[i] = buy[i].Size
		}
	}
	return sizes
}

// buildSells 生成卖单阶梯并逐档计算相对平均买入价的利润。
func buildSells(p Params, sizes, prices []float64, avgBuy float64) Ladder {
	ladder := make(Ladder, len(prices))
	var sold inventory.Holding
	cumProfit := 0.0
	for i, price := range prices {
		size := sizes[i]
		gross := size * price
		net, fee := p.Fee.settleSell(gross)
		profit := net - avgBuy*size
		cumProfit += profit
		sold.Add(size, net)
		ladder[i] = Rung{
			Index:     i + 1,
			Side:      Sell,
			Price:     price,
			Size:      size,
			Gross:     gross,
			Fee:       fee,
			Net:       net,
			CumSize:   sold.Quantity,
			CumNet:    sold.Cost,
			AvgPrice:  sold.AvgPrice(),
			Profit:    profit,
			CumProfit: cumProfit,
		}
	}
	return ladder
}
