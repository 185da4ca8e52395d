package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"order-skew/ladder"
)

// Header 是导出文件的表头。
var Header = []string{"Type", "Rung", "Price", "Size", "Value", "Fee", "Profit/Avg"}

// WritePlanCSV 按买单、卖单顺序逐档写出。买单最后一列为累计均价，卖单为该档利润。
// 数值使用最短可逆格式，ReadCSV 能无损读回。
func WritePlanCSV(w io.Writer, plan ladder.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range plan.Buy {
		if err := cw.Write(row("Buy", r, r.AvgPrice)); err != nil {
			return err
		}
	}
	for _, r := range plan.Sell {
		if err := cw.Write(row("Sell", r, r.Profit)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(kind string, r ladder.Rung, last float64) []string {
	return []string{
		kind,
		strconv.Itoa(r.Index),
		ftoa(r.Price),
		ftoa(r.Size),
		ftoa(r.Gross),
		ftoa(r.Fee),
		ftoa(last),
	}
}

// ReadCSV 读回 WritePlanCSV 的输出，只恢复文件中存在的字段。
func ReadCSV(r io.Reader) (buy, sell ladder.Ladder, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("read csv: empty input")
	}
	for i, h := range Header {
		if records[0][i] != h {
			return nil, nil, fmt.Errorf("read csv: unexpected header %q", records[0][i])
		}
	}
	for line, rec := range records[1:] {
		rung, err := parseRow(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("read csv line %d: %w", line+2, err)
		}
		switch rec[0] {
		case "Buy":
			rung.Side = ladder.Buy
			rung.AvgPrice = rung.Profit
			rung.Profit = 0
			buy = append(buy, rung)
		case "Sell":
			rung.Side = ladder.Sell
			sell = append(sell, rung)
		default:
			return nil, nil, fmt.Errorf("read csv line %d: unknown type %q", line+2, rec[0])
		}
	}
	return buy, sell, nil
}

func parseRow(rec []string) (ladder.Rung, error) {
	var r ladder.Rung
	idx, err := strconv.Atoi(rec[1])
	if err != nil {
		return r, err
	}
	r.Index = idx
	fields := []*float64{&r.Price, &r.Size, &r.Gross, &r.Fee, &r.Profit}
	for i, dst := range fields {
		v, err := strconv.ParseFloat(rec[i+2], 64)
		if err != nil {
			return r, fmt.Errorf("%s: %w", Header[i+2], err)
		}
		*dst = v
	}
	return r, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
