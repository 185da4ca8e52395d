package ladder

import "time"

// Side 标识档位所在的方向。
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Rung 是阶梯中的一档挂单。
// 序号从 1 开始，越大离锚定价越远。
type Rung struct {
	Index int     `json:"rung"`
	Side  Side    `json:"side"`
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
	// Gross 买单为该档占用的全部资金（Net+Fee），卖单为 size*price。
	Gross float64 `json:"gross"`
	Fee   float64 `json:"fee"`
	// Net 买单为实际买入金额 size*price，卖单为扣除内扣费用后的到手金额。
	Net      float64 `json:"net"`
	CumSize  float64 `json:"cumSize"`
	CumNet   float64 `json:"cumNet"`
	AvgPrice float64 `json:"avgPrice"`
	// 以下两项仅卖单有意义。
	Profit    float64 `json:"profit,omitempty"`
	CumProfit float64 `json:"cumProfit,omitempty"`
}

// Ladder 是同一方向的有序档位。
type Ladder []Rung

// Volume 返回全部档位数量之和。
func (l Ladder) Volume() float64 {
	total := 0.0
	for _, r := range l {
		total += r.Size
	}
	return total
}

// Value 返回全部档位 Net 之和。
func (l Ladder) Value() float64 {
	total := 0.0
	for _, r := range l {
		total += r.Net
	}
	return total
}

// Fees 返回全部档位费用之和。
func (l Ladder) Fees() float64 {
	total := 0.0
	for _, r := range l {
		total += r.Fee
	}
	return total
}

// Summary 汇总整份计划。
type Summary struct {
	NetProfit       float64 `json:"netProfit"`
	ROI             float64 `json:"roi"`
	AvgBuy          float64 `json:"avgBuy"`
	AvgSell         float64 `json:"avgSell"`
	TotalFees       float64 `json:"totalFees"`
	TotalQuantity   float64 `json:"totalQuantity"`
	CostBasis       float64 `json:"costBasis"`
	LowestBuy       float64 `json:"lowestBuy"`
	HighestSell     float64 `json:"highestSell"`
	BuyTotalValue   float64 `json:"buyTotalValue"`
	BuyTotalVolume  float64 `json:"buyTotalVolume"`
	SellTotalValue  float64 `json:"sellTotalValue"`
	SellTotalVolume float64 `json:"sellTotalVolume"`
}

// Plan 是一次计算的完整结果，调用方独占。
type Plan struct {
	ID         string    `json:"id"`
	Mode       ModeKind  `json:"mode"`
	ComputedAt time.Time `json:"computedAt"`
	Buy        Ladder    `json:"buyLadder"`
	Sell       Ladder    `json:"sellLadder"`
	Summary    Summary   `json:"summary"`
}
