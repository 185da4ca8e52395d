package ladder

// DepthPoint 深度图上的一个点：单档数量/金额与由近到远的累计值。
type DepthPoint struct {
	Side     Side    `json:"side"`
	Price    float64 `json:"price"`
	Qty      float64 `json:"qty"`
	Value    float64 `json:"value"`
	CumQty   float64 `json:"cumQty"`
	CumValue float64 `json:"cumValue"`
}

// DepthSeries 生成深度图数据。只卖模式不输出买单，只买模式不输出卖单。
func DepthSeries(plan Plan) []DepthPoint {
	points := make([]DepthPoint, 0, len(plan.Buy)+len(plan.Sell))
	if plan.Mode != ModeSellOnly {
		points = appendDepth(points, plan.Buy)
	}
	if plan.Mode != ModeBuyOnly {
		points = appendDepth(points, plan.Sell)
	}
	return points
}

func appendDepth(points []DepthPoint, l Ladder) []DepthPoint {
	var cumQty, cumValue float64
	for _, r := range l {
		cumQty += r.Size
		cumValue += r.Net
		points = append(points, DepthPoint{
			Side:     r.Side,
			Price:    r.Price,
			Qty:      r.Size,
			Value:    r.Net,
			CumQty:   cumQty,
			CumValue: cumValue,
		})
	}
	return points
}
