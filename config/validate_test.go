package config

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	err := Validate(AppConfig{})
	require.Error(t, err)
	var invalid ErrInvalid
	assert.True(t, errors.As(err, &invalid))

	assert.NoError(t, Validate(Defaults()))
}

func TestValidatePlan_Errors(t *testing.T) {
	cases := map[string]func(*PlanConfig){
		"mode":        func(c *PlanConfig) { c.Mode = "hodl" },
		"spacing":     func(c *PlanConfig) { c.Spacing = "log" },
		"feeType":     func(c *PlanConfig) { c.FeeType = "bps" },
		"settlement":  func(c *PlanConfig) { c.FeeSettlement = "later" },
		"rangeMode":   func(c *PlanConfig) { c.RangeMode = "band" },
		"rungs":       func(c *PlanConfig) { c.Rungs = -1 },
		"capital":     func(c *PlanConfig) { c.Capital = -5 },
		"nan price":   func(c *PlanConfig) { c.Price = math.NaN() },
		"inf depth":   func(c *PlanConfig) { c.Depth = math.Inf(1) },
		"buyFloor":    func(c *PlanConfig) { c.RangeMode = "floor"; c.BuyFloor = 120 },
		"sellCeiling": func(c *PlanConfig) { c.RangeMode = "floor"; c.SellCeiling = 90 },
	}
	for name, mutate := range cases {
		c := DefaultPlan()
		mutate(&c)
		_, err := ValidatePlan(c)
		assert.Error(t, err, name)
	}
}

func TestValidatePlan_Warnings(t *testing.T) {
	c := DefaultPlan()
	warnings, err := ValidatePlan(c)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	c.Skew = 150
	c.Rungs = 5000
	c.Depth = 120
	warnings, err = ValidatePlan(c)
	require.NoError(t, err)
	assert.Len(t, warnings, 3)

	c = DefaultPlan()
	c.Capital = 0
	c.Price = 0
	warnings, err = ValidatePlan(c)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	// floor 模式下未给出的边界不会报错
	c = DefaultPlan()
	c.RangeMode = "floor"
	warnings, err = ValidatePlan(c)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
