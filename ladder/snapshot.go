package ladder

// Snapshot 是最近一次以买单为准的计算得到的买单阶梯及其汇总，
// 供只卖模式复用，避免用已清零的买入参数重算。
// 只整体替换，不做局部修改。
type Snapshot struct {
	Buy           Ladder  `json:"buyLadder"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalSpent    float64 `json:"totalSpent"`
	TotalFees     float64 `json:"totalFees"`
}

func newSnapshot(buy Ladder) *Snapshot {
	return &Snapshot{
		Buy:           buy.clone(),
		TotalQuantity: buy.Volume(),
		TotalSpent:    buy.Value(),
		TotalFees:     buy.Fees(),
	}
}

// Empty 报告快照是否可复用。
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Buy) == 0
}

// Ladder 返回买单阶梯副本。
func (s *Snapshot) Ladder() Ladder {
	if s == nil {
		return Ladder{}
	}
	return s.Buy.clone()
}

func (l Ladder) clone() Ladder {
	out := make(Ladder, len(l))
	copy(out, l)
	return out
}
