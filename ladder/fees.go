package ladder

import "math"

func (f FeeModel) rate() float64 {
	if f.Kind == FeePercent {
		return f.Value / 100
	}
	return 0
}

func (f FeeModel) active() bool { return f.Value > 0 }

// splitBuy 把分配给某档的资金拆成实际买入金额与费用。
// Netted：费用从分配中扣除，net+fee=alloc；External：全部资金用于买入，费用另计。
func (f FeeModel) splitBuy(alloc float64) (net, fee float64) {
	if alloc <= 0 {
		return 0, 0
	}
	if !f.active() {
		return alloc, 0
	}
	if f.Settlement == External {
		if f.Kind == FeePercent {
			return alloc, alloc * f.rate()
		}
		return alloc, f.Value
	}
	if f.Kind == FeePercent {
		net = alloc / (1 + f.rate())
		return net, alloc - net
	}
	fee = math.Min(f.Value, alloc)
	return alloc - fee, fee
}

// feeOn 按成交额计算原始费用，成交额为 0 时不收费。
func (f FeeModel) feeOn(notional float64) float64 {
	if !f.active() || notional <= 0 {
		return 0
	}
	if f.Kind == FeePercent {
		return notional * f.rate()
	}
	return f.Value
}

// settleSell 返回卖出到手金额与费用；内扣费用不超过成交额。
func (f FeeModel) settleSell(gross float64) (net, fee float64) {
	fee = f.feeOn(gross)
	if f.Settlement == External {
		return gross, fee
	}
	fee = math.Min(fee, gross)
	return math.Max(gross-fee, 0), fee
}
