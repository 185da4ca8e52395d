package ladder

import "math"

// MaxRungs 单侧档位数上限。
const MaxRungs = 1000

// Spacing 档位价格间距形态。
type Spacing int

const (
	// Arithmetic 相邻档位价差相等。
	Arithmetic Spacing = iota
	// Geometric 相邻档位价格比相等。
	Geometric
)

func (s Spacing) String() string {
	if s == Geometric {
		return "geometric"
	}
	return "arithmetic"
}

// Sizing 档位数量分配方式。
type Sizing int

const (
	SkewWeighted Sizing = iota
	EqualQuantity
)

func (s Sizing) String() string {
	if s == EqualQuantity {
		return "equal-quantity"
	}
	return "skew-weighted"
}

// FeeKind 费用计算基准。
type FeeKind int

const (
	FeePercent FeeKind = iota
	FeeFixed
)

// Settlement 费用结算方式。
type Settlement int

const (
	// Netted 费用从成交金额中扣除。
	Netted Settlement = iota
	// External 费用另行支付，单独计入成本。
	External
)

// FeeModel 描述每档的手续费。Value 在 FeePercent 下为百分比（0.075 表示 0.075%），
// 在 FeeFixed 下为每档固定金额。
type FeeModel struct {
	Kind       FeeKind
	Value      float64
	Settlement Settlement
}

// RangeMode 价格区间的指定方式。
type RangeMode int

const (
	// RangeWidth 以锚定价为中心的对称百分比深度。
	RangeWidth RangeMode = iota
	// RangeFloor 显式给出买入下限与卖出上限。
	RangeFloor
)

// Range 价格区间。
type Range struct {
	Mode        RangeMode
	DepthPct    float64
	BuyFloor    float64
	SellCeiling float64
}

// ends 计算买卖两侧最远档价格。
// floor 模式下未给出的下限/上限回落到锚定价的 0.8/1.2 倍。
func (r Range) ends(anchor float64) (buyEnd, sellEnd float64) {
	if r.Mode == RangeFloor {
		buyEnd, sellEnd = r.BuyFloor, r.SellCeiling
		if buyEnd <= 0 {
			buyEnd = anchor * 0.8
		}
		if sellEnd <= 0 {
			sellEnd = anchor * 1.2
		}
		return buyEnd, sellEnd
	}
	return anchor * (1 - r.DepthPct/100), anchor * (1 + r.DepthPct/100)
}

// ModeKind 交易模式名称。
type ModeKind string

const (
	ModeBuySell  ModeKind = "buy-sell"
	ModeBuyOnly  ModeKind = "buy-only"
	ModeSellOnly ModeKind = "sell-only"
)

// Mode 是交易模式的标签联合，每种模式只携带自身需要的字段。
type Mode interface {
	Kind() ModeKind
}

// BuySell 用 Capital 建立买单阶梯，并在卖单阶梯上卖出全部买入数量。
type BuySell struct {
	Capital float64
}

func (BuySell) Kind() ModeKind { return ModeBuySell }

// BuyOnly 只建立买单阶梯，不计算卖出收益。
type BuyOnly struct {
	Capital float64
}

func (BuyOnly) Kind() ModeKind { return ModeBuyOnly }

// Holding 已持有的数量与均价。
type Holding struct {
	Quantity     float64
	AveragePrice float64
}

// SellOnly 只卖出。成本来源优先级：ExecutedCutoff（>0 表示已设置）、Holding、基线买单阶梯。
// 只卖模式没有资金参数，要卖出的数量通过 Holding.Quantity 传入；
// 只知道数量时 AveragePrice 留 0，成本按 0 计。
type SellOnly struct {
	Holding        *Holding
	ExecutedCutoff int
}

func (SellOnly) Kind() ModeKind { return ModeSellOnly }

// Params 一次计算所需的全部参数。
type Params struct {
	Mode    Mode
	Anchor  float64
	Rungs   int
	Skew    float64
	Range   Range
	Spacing Spacing
	Fee     FeeModel
	Sizing  Sizing
	// BuyStart/SellStart 为非对称起始价，0 表示使用 Anchor。
	BuyStart  float64
	SellStart float64
}

// SimpleDefaults 返回简易模式的固定参数。
func SimpleDefaults(capital, price float64) Params {
	return Params{
		Mode:   BuySell{Capital: capital},
		Anchor: price,
		Rungs:  10,
		Skew:   50,
		Range:  Range{Mode: RangeWidth, DepthPct: 25},
		Fee:    FeeModel{Kind: FeePercent, Value: 0.075, Settlement: Netted},
	}
}

// Sanitize 把非有限或负的数值归零、把档位数与偏斜限制在合法范围内。
// 之后的计算对任何经过 Sanitize 的参数都有定义，不会失败。
func (p Params) Sanitize() Params {
	out := p
	out.Anchor = nonNeg(p.Anchor)
	out.Skew = math.Min(nonNeg(p.Skew), 100)
	out.BuyStart = nonNeg(p.BuyStart)
	out.SellStart = nonNeg(p.SellStart)
	if out.Rungs < 0 {
		out.Rungs = 0
	}
	if out.Rungs > MaxRungs {
		out.Rungs = MaxRungs
	}
	out.Range.DepthPct = nonNeg(p.Range.DepthPct)
	out.Range.BuyFloor = nonNeg(p.Range.BuyFloor)
	out.Range.SellCeiling = nonNeg(p.Range.SellCeiling)
	out.Fee.Value = nonNeg(p.Fee.Value)

	switch m := p.Mode.(type) {
	case BuySell:
		out.Mode = BuySell{Capital: nonNeg(m.Capital)}
	case *BuySell:
		out.Mode = BuySell{Capital: nonNeg(m.Capital)}
	case BuyOnly:
		out.Mode = BuyOnly{Capital: nonNeg(m.Capital)}
	case *BuyOnly:
		out.Mode = BuyOnly{Capital: nonNeg(m.Capital)}
	case SellOnly:
		out.Mode = sanitizeSellOnly(m)
	case *SellOnly:
		out.Mode = sanitizeSellOnly(*m)
	default:
		out.Mode = BuySell{}
	}
	return out
}

func sanitizeSellOnly(m SellOnly) SellOnly {
	out := SellOnly{ExecutedCutoff: m.ExecutedCutoff}
	if out.ExecutedCutoff < 0 {
		out.ExecutedCutoff = 0
	}
	if m.Holding != nil {
		out.Holding = &Holding{
			Quantity:     nonNeg(m.Holding.Quantity),
			AveragePrice: nonNeg(m.Holding.AveragePrice),
		}
	}
	return out
}

// capital 返回买入资金；卖出模式下为 0。
func (p Params) capital() float64 {
	switch m := p.Mode.(type) {
	case BuySell:
		return m.Capital
	case BuyOnly:
		return m.Capital
	}
	return 0
}

func nonNeg(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
