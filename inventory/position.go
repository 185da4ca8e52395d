package inventory

// Holding 累计持仓数量与成本，用于计算滚动均价。
// 零值可直接使用；值类型，不做并发保护。
type Holding struct {
	Quantity float64
	Cost     float64
}

// FromAverage 由数量与均价构造持仓。
func FromAverage(qty, avgPrice float64) Holding {
	if qty <= 0 {
		return Holding{}
	}
	return Holding{Quantity: qty, Cost: qty * avgPrice}
}

// Add 累加一笔成交：数量与对应成本。
func (h *Holding) Add(qty, cost float64) {
	h.Quantity += qty
	h.Cost += cost
}

// AvgPrice 加权平均成本，数量为 0 时返回 0。
func (h Holding) AvgPrice() float64 {
	if h.Quantity <= 0 {
		return 0
	}
	return h.Cost / h.Quantity
}

// CostOf 按均价计算 qty 的成本。
func (h Holding) CostOf(qty float64) float64 {
	return h.AvgPrice() * qty
}
