package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"order-skew/config"
	"order-skew/export"
	"order-skew/inventory"
	"order-skew/ladder"
)

type options struct {
	cfgPath   string
	presetIn  string
	csvOut    string
	jsonOut   string
	presetOut string
	mark      float64
	simple    bool
	showDepth bool
	plan      config.PlanConfig
}

func main() {
	opts := parseFlags(os.Args[1:])
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "plan: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) options {
	var o options
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	fs.StringVar(&o.cfgPath, "config", "", "配置文件路径（yaml 或 toml），留空使用默认参数")
	fs.StringVar(&o.presetIn, "preset", "", "读取 JSON 预设并覆盖资金/档位/偏斜/深度")
	fs.StringVar(&o.csvOut, "csv", "", "导出 CSV 文件路径")
	fs.StringVar(&o.jsonOut, "json", "", "导出完整计划 JSON，- 表示标准输出")
	fs.StringVar(&o.presetOut, "save-preset", "", "保存当前参数为 JSON 预设")
	fs.Float64Var(&o.mark, "mark", 0, "标记价，>0 时输出持仓市值与未实现盈亏")
	fs.BoolVar(&o.simple, "simple", false, "简易模式：只使用资金与价格，其余取默认值")
	fs.BoolVar(&o.showDepth, "depth-series", false, "输出深度图数据")

	var p config.PlanConfig
	fs.StringVar(&p.Mode, "mode", "", "buy-sell / buy-only / sell-only")
	fs.Float64Var(&p.Capital, "capital", 0, "买入资金")
	fs.Float64Var(&p.Price, "price", 0, "锚定价")
	fs.IntVar(&p.Rungs, "rungs", 0, "单侧档位数")
	fs.Float64Var(&p.Skew, "skew", 0, "偏斜 0-100")
	fs.Float64Var(&p.Depth, "depth", 0, "价格深度百分比")
	fs.Float64Var(&p.BuyFloor, "floor", 0, "买入下限（设置后使用 floor 区间）")
	fs.Float64Var(&p.SellCeiling, "ceiling", 0, "卖出上限（设置后使用 floor 区间）")
	fs.StringVar(&p.Spacing, "spacing", "", "arithmetic / geometric")
	fs.Float64Var(&p.FeeValue, "fee", 0, "手续费：percent 下为百分比，fixed 下为每档金额")
	fs.StringVar(&p.FeeType, "fee-type", "", "percent / fixed")
	fs.StringVar(&p.FeeSettlement, "fee-settlement", "", "netted / external")
	fs.BoolVar(&p.EqualQuantity, "equal-qty", false, "每档数量相等")
	fs.Float64Var(&p.BuyStart, "buy-start", 0, "买单起始价")
	fs.Float64Var(&p.SellStart, "sell-start", 0, "卖单起始价")
	fs.Float64Var(&p.ExistingQuantity, "hold-qty", 0, "只卖模式：已有持仓数量")
	fs.Float64Var(&p.ExistingAvgPrice, "hold-avg", 0, "只卖模式：已有持仓均价")
	fs.IntVar(&p.ExecutedCutoff, "executed", 0, "只卖模式：最高已成交买单档位")
	_ = fs.Parse(args)

	// 只覆盖显式给出的参数
	o.plan = config.DefaultPlan()
	if o.cfgPath != "" {
		cfg, err := config.LoadWithEnvOverrides(o.cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
		o.plan = cfg.Plan
	}
	fs.Visit(func(f *flag.Flag) {
		overlay(&o.plan, p, f.Name)
	})
	return o
}

func overlay(dst *config.PlanConfig, src config.PlanConfig, name string) {
	switch name {
	case "mode":
		dst.Mode = src.Mode
	case "capital":
		dst.Capital = src.Capital
	case "price":
		dst.Price = src.Price
	case "rungs":
		dst.Rungs = src.Rungs
	case "skew":
		dst.Skew = src.Skew
	case "depth":
		dst.Depth = src.Depth
		dst.RangeMode = "width"
	case "floor":
		dst.BuyFloor = src.BuyFloor
		dst.RangeMode = "floor"
	case "ceiling":
		dst.SellCeiling = src.SellCeiling
		dst.RangeMode = "floor"
	case "spacing":
		dst.Spacing = src.Spacing
	case "fee":
		dst.FeeValue = src.FeeValue
	case "fee-type":
		dst.FeeType = src.FeeType
	case "fee-settlement":
		dst.FeeSettlement = src.FeeSettlement
	case "equal-qty":
		dst.EqualQuantity = src.EqualQuantity
	case "buy-start":
		dst.BuyStart = src.BuyStart
	case "sell-start":
		dst.SellStart = src.SellStart
	case "hold-qty":
		dst.ExistingQuantity = src.ExistingQuantity
	case "hold-avg":
		dst.ExistingAvgPrice = src.ExistingAvgPrice
	case "executed":
		dst.ExecutedCutoff = src.ExecutedCutoff
	}
}

func run(o options, stdout, stderr io.Writer) error {
	pc := o.plan
	if o.presetIn != "" {
		f, err := os.Open(o.presetIn)
		if err != nil {
			return err
		}
		preset, err := export.LoadPreset(f)
		f.Close()
		if err != nil {
			return err
		}
		pc = preset.Apply(pc)
	}
	if o.simple {
		pc = config.FromParams(ladder.SimpleDefaults(pc.Capital, pc.Price))
	}

	warnings, err := config.ValidatePlan(pc)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	plan := compute(pc)
	printPlan(stdout, pc, plan)

	if o.mark > 0 {
		printValuation(stdout, plan, o.mark)
	}
	if o.showDepth {
		printDepth(stdout, plan)
	}
	if o.csvOut != "" {
		if err := writeFile(o.csvOut, func(w io.Writer) error { return export.WritePlanCSV(w, plan) }); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if o.jsonOut != "" {
		enc := func(w io.Writer) error {
			e := json.NewEncoder(w)
			e.SetIndent("", "  ")
			return e.Encode(plan)
		}
		if o.jsonOut == "-" {
			if err := enc(stdout); err != nil {
				return err
			}
		} else if err := writeFile(o.jsonOut, enc); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	if o.presetOut != "" {
		if err := writeFile(o.presetOut, func(w io.Writer) error { return export.SavePreset(w, export.PresetFrom(pc)) }); err != nil {
			return fmt.Errorf("write preset: %w", err)
		}
	}
	return nil
}

// compute 只卖模式先用相同参数的买卖模式生成基线，买单阶梯与交互式使用一致。
func compute(pc config.PlanConfig) ladder.Plan {
	params := pc.Params()
	var baseline *ladder.Snapshot
	if params.Mode.Kind() == ladder.ModeSellOnly {
		basePC := pc
		basePC.Mode = string(ladder.ModeBuySell)
		_, baseline = ladder.Compute(basePC.Params(), nil)
	}
	plan, _ := ladder.Compute(params, baseline)
	return plan
}

func printPlan(w io.Writer, pc config.PlanConfig, plan ladder.Plan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "mode=%s rungs=%d skew=%.0f (%s) spacing=%s\n\n", plan.Mode, pc.Rungs, pc.Skew, ladder.SkewLabel(pc.Skew), pc.Params().Spacing)

	if plan.Mode != ladder.ModeSellOnly || len(plan.Buy) > 0 {
		fmt.Fprintln(tw, "BUY\tprice\tsize\tgross\tfee\tcum size\tavg\t")
		for _, r := range plan.Buy {
			fmt.Fprintf(tw, "%d\t%.6g\t%.6g\t%.2f\t%.4f\t%.6g\t%.6g\t\n", r.Index, r.Price, r.Size, r.Gross, r.Fee, r.CumSize, r.AvgPrice)
		}
		fmt.Fprintln(tw, "\t\t\t\t\t\t\t")
	}
	if plan.Mode != ladder.ModeBuyOnly {
		fmt.Fprintln(tw, "SELL\tprice\tsize\tnet\tfee\tprofit\tcum profit\t")
		for _, r := range plan.Sell {
			fmt.Fprintf(tw, "%d\t%.6g\t%.6g\t%.2f\t%.4f\t%.2f\t%.2f\t\n", r.Index, r.Price, r.Size, r.Net, r.Fee, r.Profit, r.CumProfit)
		}
	}
	_ = tw.Flush()

	s := plan.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "quantity   %.6g\n", s.TotalQuantity)
	fmt.Fprintf(w, "cost basis %.2f\n", s.CostBasis)
	fmt.Fprintf(w, "avg buy    %.6g\n", s.AvgBuy)
	if plan.Mode != ladder.ModeBuyOnly {
		fmt.Fprintf(w, "avg sell   %.6g\n", s.AvgSell)
		fmt.Fprintf(w, "net profit %.2f\n", s.NetProfit)
		fmt.Fprintf(w, "roi        %.2f%%\n", s.ROI)
	}
	fmt.Fprintf(w, "fees       %.4f\n", s.TotalFees)
}

func printValuation(w io.Writer, plan ladder.Plan, mark float64) {
	h := inventory.Holding{Quantity: plan.Summary.TotalQuantity, Cost: plan.Summary.CostBasis}
	value, pnl := h.Valuation(mark)
	fmt.Fprintf(w, "mark %.6g: value %.2f, unrealized %.2f\n", mark, value, pnl)
}

func printDepth(w io.Writer, plan ladder.Plan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w)
	fmt.Fprintln(tw, "side\tprice\tqty\tcum qty\tcum value\t")
	for _, p := range ladder.DepthSeries(plan) {
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%.6g\t%.2f\t\n", p.Side, p.Price, p.Qty, p.CumQty, p.CumValue)
	}
	_ = tw.Flush()
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
