package config

import (
	"strings"

	"order-skew/ladder"
)

// PlanConfig 是计划参数的扁平表示，供配置文件、HTTP 接口与命令行共用。
type PlanConfig struct {
	Mode          string  `yaml:"mode" toml:"mode" json:"mode"` // buy-sell / buy-only / sell-only
	Capital       float64 `yaml:"capital" toml:"capital" json:"capital"`
	Price         float64 `yaml:"price" toml:"price" json:"price"`
	Rungs         int     `yaml:"rungs" toml:"rungs" json:"rungs"`
	Skew          float64 `yaml:"skew" toml:"skew" json:"skew"`
	RangeMode     string  `yaml:"rangeMode" toml:"rangeMode" json:"rangeMode"` // width / floor
	Depth         float64 `yaml:"depth" toml:"depth" json:"depth"`
	BuyFloor      float64 `yaml:"buyFloor" toml:"buyFloor" json:"buyFloor"`
	SellCeiling   float64 `yaml:"sellCeiling" toml:"sellCeiling" json:"sellCeiling"`
	Spacing       string  `yaml:"spacing" toml:"spacing" json:"spacing"`                   // arithmetic / geometric
	FeeType       string  `yaml:"feeType" toml:"feeType" json:"feeType"`                   // percent / fixed
	FeeValue      float64 `yaml:"feeValue" toml:"feeValue" json:"feeValue"`                // percent 下 0.075 表示 0.075%
	FeeSettlement string  `yaml:"feeSettlement" toml:"feeSettlement" json:"feeSettlement"` // netted / external
	EqualQuantity bool    `yaml:"equalQuantity" toml:"equalQuantity" json:"equalQuantity"`
	BuyStart      float64 `yaml:"buyStart" toml:"buyStart" json:"buyStart"`
	SellStart     float64 `yaml:"sellStart" toml:"sellStart" json:"sellStart"`

	// 仅 sell-only 使用
	ExistingQuantity float64 `yaml:"existingQuantity" toml:"existingQuantity" json:"existingQuantity"`
	ExistingAvgPrice float64 `yaml:"existingAvgPrice" toml:"existingAvgPrice" json:"existingAvgPrice"`
	ExecutedCutoff   int     `yaml:"executedCutoff" toml:"executedCutoff" json:"executedCutoff"`
}

// DefaultPlan 与简易模式一致：10 档、偏斜 50、深度 25%、0.075% 手续费。
func DefaultPlan() PlanConfig {
	return FromParams(ladder.SimpleDefaults(10000, 100))
}

// Params 转换为引擎参数。未知的枚举字符串回落到默认值，数值清洗交给 Sanitize。
func (c PlanConfig) Params() ladder.Params {
	p := ladder.Params{
		Anchor:    c.Price,
		Rungs:     c.Rungs,
		Skew:      c.Skew,
		BuyStart:  c.BuyStart,
		SellStart: c.SellStart,
		Range: ladder.Range{
			DepthPct:    c.Depth,
			BuyFloor:    c.BuyFloor,
			SellCeiling: c.SellCeiling,
		},
		Fee: ladder.FeeModel{Value: c.FeeValue},
	}
	if norm(c.RangeMode) == "floor" {
		p.Range.Mode = ladder.RangeFloor
	}
	if norm(c.Spacing) == "geometric" {
		p.Spacing = ladder.Geometric
	}
	if norm(c.FeeType) == "fixed" {
		p.Fee.Kind = ladder.FeeFixed
	}
	if norm(c.FeeSettlement) == "external" {
		p.Fee.Settlement = ladder.External
	}
	if c.EqualQuantity {
		p.Sizing = ladder.EqualQuantity
	}

	switch ladder.ModeKind(norm(c.Mode)) {
	case ladder.ModeBuyOnly:
		p.Mode = ladder.BuyOnly{Capital: c.Capital}
	case ladder.ModeSellOnly:
		m := ladder.SellOnly{ExecutedCutoff: c.ExecutedCutoff}
		if c.ExistingQuantity > 0 {
			m.Holding = &ladder.Holding{Quantity: c.ExistingQuantity, AveragePrice: c.ExistingAvgPrice}
		}
		p.Mode = m
	default:
		p.Mode = ladder.BuySell{Capital: c.Capital}
	}
	return p.Sanitize()
}

// FromParams 是 Params 的逆变换。
func FromParams(p ladder.Params) PlanConfig {
	p = p.Sanitize()
	c := PlanConfig{
		Mode:          string(p.Mode.Kind()),
		Price:         p.Anchor,
		Rungs:         p.Rungs,
		Skew:          p.Skew,
		RangeMode:     "width",
		Depth:         p.Range.DepthPct,
		BuyFloor:      p.Range.BuyFloor,
		SellCeiling:   p.Range.SellCeiling,
		Spacing:       p.Spacing.String(),
		FeeType:       "percent",
		FeeValue:      p.Fee.Value,
		FeeSettlement: "netted",
		EqualQuantity: p.Sizing == ladder.EqualQuantity,
		BuyStart:      p.BuyStart,
		SellStart:     p.SellStart,
	}
	if p.Range.Mode == ladder.RangeFloor {
		c.RangeMode = "floor"
	}
	if p.Fee.Kind == ladder.FeeFixed {
		c.FeeType = "fixed"
	}
	if p.Fee.Settlement == ladder.External {
		c.FeeSettlement = "external"
	}
	switch m := p.Mode.(type) {
	case ladder.BuySell:
		c.Capital = m.Capital
	case ladder.BuyOnly:
		c.Capital = m.Capital
	case ladder.SellOnly:
		c.ExecutedCutoff = m.ExecutedCutoff
		if m.Holding != nil {
			c.ExistingQuantity = m.Holding.Quantity
			c.ExistingAvgPrice = m.Holding.AveragePrice
		}
	}
	return c
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
