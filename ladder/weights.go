package ladder

import "math"

// MaxSkewRatio 满偏斜时最远档与最近档的权重比上限。
const MaxSkewRatio = 10.0

// Weights 生成 count 个单调递增的相对权重。
// skew<=0 时全部为 1；否则最远档/最近档之比随 skew 增长到 MaxSkewRatio，
// 曲率 1+skew/100 决定增长集中在远端的程度。
func Weights(count int, skew float64) []float64 {
	if count <= 0 {
		return []float64{}
	}
	weights := make([]float64, count)
	if !(skew > 0) {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}
	norm := math.Min(skew, 100) / 100
	ratio := 1 + math.Pow(norm, 1.2)*(MaxSkewRatio-1)
	minWeight := 1 / ratio
	curvature := 1 + norm

	if count == 1 {
		weights[0] = 1
		return weights
	}
	for i := range weights {
		rel := float64(i) / float64(count-1)
		shaped := math.Pow(rel, curvature)
		weights[i] = math.Max(math.Pow(ratio, shaped)-1+minWeight, epsilon)
	}
	return weights
}

// epsilon 为 float64 机器精度，保证权重严格为正。
const epsilon = 2.220446049250313e-16

// SkewLabel 返回偏斜强度的文字描述。
func SkewLabel(skew float64) string {
	switch {
	case skew <= 0:
		return "Flat"
	case skew <= 30:
		return "Gentle"
	case skew <= 70:
		return "Moderate"
	default:
		return "Aggressive"
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
