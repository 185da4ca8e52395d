package config

import (
	"fmt"
	"math"

	"order-skew/ladder"
)

// ErrInvalid 用于参数验证错误。
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }

// Validate 对整体配置做启动前检查。计划参数中的可修正问题只作为警告，见 ValidatePlan。
func Validate(cfg AppConfig) error {
	if cfg.Server.Addr == "" {
		return ErrInvalid("server.addr is required")
	}
	if cfg.Server.DebounceMs < 0 || cfg.Server.ReloadCooldownMs < 0 {
		return ErrInvalid("server.debounceMs/reloadCooldownMs must be >= 0")
	}
	if _, err := ValidatePlan(cfg.Plan); err != nil {
		return err
	}
	return nil
}

// ValidatePlan 返回致命错误以及不影响计算的警告。
// 引擎本身接受任何输入；这里拦截的是语义上明显错误的组合。
func ValidatePlan(c PlanConfig) (warnings []string, err error) {
	switch ladder.ModeKind(norm(c.Mode)) {
	case ladder.ModeBuySell, ladder.ModeBuyOnly, ladder.ModeSellOnly, "":
	default:
		return nil, ErrInvalid(fmt.Sprintf("plan.mode %q unknown", c.Mode))
	}
	if !oneOf(c.RangeMode, "", "width", "floor") {
		return nil, ErrInvalid(fmt.Sprintf("plan.rangeMode %q unknown", c.RangeMode))
	}
	if !oneOf(c.Spacing, "", "arithmetic", "geometric") {
		return nil, ErrInvalid(fmt.Sprintf("plan.spacing %q unknown", c.Spacing))
	}
	if !oneOf(c.FeeType, "", "percent", "fixed") {
		return nil, ErrInvalid(fmt.Sprintf("plan.feeType %q unknown", c.FeeType))
	}
	if !oneOf(c.FeeSettlement, "", "netted", "external") {
		return nil, ErrInvalid(fmt.Sprintf("plan.feeSettlement %q unknown", c.FeeSettlement))
	}
	if c.Rungs < 0 {
		return nil, ErrInvalid("plan.rungs must be >= 0")
	}
	if c.Rungs > ladder.MaxRungs {
		warnings = append(warnings, fmt.Sprintf("plan.rungs clamped to %d", ladder.MaxRungs))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"capital", c.Capital}, {"price", c.Price}, {"skew", c.Skew}, {"depth", c.Depth},
		{"buyFloor", c.BuyFloor}, {"sellCeiling", c.SellCeiling}, {"feeValue", c.FeeValue},
		{"buyStart", c.BuyStart}, {"sellStart", c.SellStart},
		{"existingQuantity", c.ExistingQuantity}, {"existingAvgPrice", c.ExistingAvgPrice},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return nil, ErrInvalid(fmt.Sprintf("plan.%s must be finite", f.name))
		}
		if f.v < 0 {
			return nil, ErrInvalid(fmt.Sprintf("plan.%s must be >= 0", f.name))
		}
	}
	if c.Skew > 100 {
		warnings = append(warnings, "plan.skew clamped to 100")
	}
	if norm(c.RangeMode) == "floor" && c.Price > 0 {
		if c.BuyFloor > 0 && c.BuyFloor >= c.Price {
			return nil, ErrInvalid("plan.buyFloor must be below price")
		}
		if c.SellCeiling > 0 && c.SellCeiling <= c.Price {
			return nil, ErrInvalid("plan.sellCeiling must be above price")
		}
	}
	if norm(c.RangeMode) != "floor" && c.Depth >= 100 {
		warnings = append(warnings, "plan.depth >= 100%: deepest buy rungs are floored at 0")
	}
	if c.Price == 0 {
		warnings = append(warnings, "plan.price is 0: all rungs are empty")
	}
	if ladder.ModeKind(norm(c.Mode)) != ladder.ModeSellOnly && c.Capital == 0 {
		warnings = append(warnings, "plan.capital is 0: all buy sizes are 0")
	}
	if ladder.ModeKind(norm(c.Mode)) == ladder.ModeSellOnly {
		if c.ExistingQuantity > 0 && c.ExistingAvgPrice == 0 {
			warnings = append(warnings, "plan.existingAvgPrice is 0: cost basis is 0")
		}
		if c.ExecutedCutoff < 0 {
			return nil, ErrInvalid("plan.executedCutoff must be >= 0")
		}
	}
	return warnings, nil
}

func oneOf(v string, allowed ...string) bool {
	v = norm(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
