package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-skew/config"
)

func TestPresetRoundTrip(t *testing.T) {
	c := config.DefaultPlan()
	c.Capital = 25000
	c.Rungs = 12
	c.Skew = 65
	c.Depth = 18

	var buf bytes.Buffer
	require.NoError(t, SavePreset(&buf, PresetFrom(c)))
	assert.JSONEq(t, `{"startingCapital":25000,"numberOfRungs":12,"skewValue":65,"depth":18}`, buf.String())

	p, err := LoadPreset(&buf)
	require.NoError(t, err)
	assert.Equal(t, c, p.Apply(config.DefaultPlan()))
}

func TestLoadPresetStrings(t *testing.T) {
	p, err := LoadPreset(strings.NewReader(`{"startingCapital":"12,500","numberOfRungs":"8","skewValue":"40","depth":"30"}`))
	require.NoError(t, err)
	assert.Equal(t, Preset{StartingCapital: 12500, NumberOfRungs: 8, SkewValue: 40, Depth: 30}, p)

	_, err = LoadPreset(strings.NewReader(`{"startingCapital":"lots"}`))
	assert.Error(t, err)
	_, err = LoadPreset(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestPresetApplyEmpty(t *testing.T) {
	base := config.DefaultPlan()
	assert.Equal(t, base, Preset{NumberOfRungs: 3}.Apply(base))
}
