package ladder

import "math"

// buildPrices 生成买卖两侧由近到远的价格，第 N 档固定为区间端点价。
// 等比间距下每侧独立使用 (end/start)^(1/N) 的固定比例。
func buildPrices(p Params) (buy, sell []float64) {
	n := p.Rungs
	if n <= 0 {
		return []float64{}, []float64{}
	}
	buy = make([]float64, n)
	sell = make([]float64, n)
	if p.Anchor <= 0 {
		return buy, sell
	}

	buyEnd, sellEnd := p.Range.ends(p.Anchor)
	buyStart, sellStart := p.Anchor, p.Anchor
	if p.BuyStart > 0 {
		buyStart = p.BuyStart
	}
	if p.SellStart > 0 {
		sellStart = p.SellStart
	}

	if p.Spacing == Geometric {
		buyStep := logStep(buyStart, buyEnd, n)
		sellStep := logStep(sellStart, sellEnd, n)
		for i := 0; i < n; i++ {
			buy[i] = buyStart * math.Exp(buyStep*float64(i+1))
			sell[i] = sellStart * math.Exp(sellStep*float64(i+1))
		}
	} else {
		buyDelta := (buyStart - buyEnd) / float64(n)
		sellDelta := (sellEnd - sellStart) / float64(n)
		for i := 0; i < n; i++ {
			buy[i] = buyStart - float64(i+1)*buyDelta
			sell[i] = sellStart + float64(i+1)*sellDelta
		}
	}

	buy[n-1] = buyEnd
	sell[n-1] = sellEnd
	for i := 0; i < n; i++ {
		buy[i] = math.Max(buy[i], 0)
		sell[i] = math.Max(sell[i], 0)
	}
	return buy, sell
}

// logStep 返回每档的对数价格步长；端点非正时步长为 -Inf（价格趋于 0）。
func logStep(start, end float64, n int) float64 {
	if start <= 0 {
		return 0
	}
	if end <= 0 {
		return math.Inf(-1)
	}
	return math.Log(end/start) / float64(n)
}
