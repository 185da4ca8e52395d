package inventory

// Valuation 基于标记价计算持仓市值与未实现盈亏。
func (h Holding) Valuation(mark float64) (value float64, pnl float64) {
	if h.Quantity <= 0 {
		return 0, 0
	}
	value = mark * h.Quantity
	pnl = value - h.Cost
	return
}
