package ladder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeights_EmptyAndFlat(t *testing.T) {
	assert.Empty(t, Weights(0, 50))
	assert.Empty(t, Weights(-3, 50))

	for _, count := range []int{1, 2, 7, 40} {
		w := Weights(count, 0)
		require.Len(t, w, count)
		for _, v := range w {
			assert.Equal(t, 1.0, v)
		}
	}
	for _, v := range Weights(5, -20) {
		assert.Equal(t, 1.0, v)
	}
	for _, v := range Weights(5, math.NaN()) {
		assert.Equal(t, 1.0, v)
	}
}

func TestWeights_SingleRung(t *testing.T) {
	assert.Equal(t, []float64{1}, Weights(1, 80))
}

func TestWeights_Monotonic(t *testing.T) {
	for count := 2; count <= 30; count++ {
		for _, skew := range []float64{1, 10, 33, 50, 75, 100, 250} {
			w := Weights(count, skew)
			require.Len(t, w, count)
			for i := 1; i < count; i++ {
				assert.GreaterOrEqual(t, w[i], w[i-1], "count=%d skew=%.0f i=%d", count, skew, i)
				assert.Greater(t, w[i], 0.0)
			}
		}
	}
}

func TestWeights_FullSkewEnds(t *testing.T) {
	w := Weights(10, 100)
	// 满偏斜：R=10，最近档 1/R，最远档 R-1+1/R
	assert.InDelta(t, 0.1, w[0], 1e-12)
	assert.InDelta(t, 9.1, w[9], 1e-12)

	// 超过 100 的偏斜按 100 处理
	assert.Equal(t, w, Weights(10, 180))
}

func TestWeights_ModerateShape(t *testing.T) {
	skew := 50.0
	norm := skew / 100
	ratio := 1 + math.Pow(norm, 1.2)*(MaxSkewRatio-1)
	w := Weights(5, skew)

	assert.InDelta(t, 1/ratio, w[0], 1e-12)
	assert.InDelta(t, ratio-1+1/ratio, w[4], 1e-12)
	mid := math.Pow(ratio, math.Pow(0.5, 1+norm)) - 1 + 1/ratio
	assert.InDelta(t, mid, w[2], 1e-12)
}

func TestSkewLabel(t *testing.T) {
	assert.Equal(t, "Flat", SkewLabel(0))
	assert.Equal(t, "Gentle", SkewLabel(30))
	assert.Equal(t, "Moderate", SkewLabel(31))
	assert.Equal(t, "Moderate", SkewLabel(70))
	assert.Equal(t, "Aggressive", SkewLabel(71))
}
