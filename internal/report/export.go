package report

import (
	"fmt"
	"strings"

	"FundCalc/internal/model"
)

const (
	ExportTitle      = "基金溢价预期收益区间（估算）"
	ExportDisclaimer = "备注：默认按NAV不变简化，仅用于区间理解，不构成预测。"
)

// ExportLines returns the copy/paste report. The line order is consumed by
// spreadsheets downstream and must not change.
func ExportLines(r *model.CalcResult) []string {
	return []string{
		ExportTitle,
		fmt.Sprintf("申购金额：%s", FormatCNY(r.Amount)),
		fmt.Sprintf("当前溢价：%s%%", formatPlain(r.PremiumPct)),
		fmt.Sprintf("确认周期：T+%d", r.SettleDays),
		fmt.Sprintf("当前第几天：第%d天（1=今天）", r.CurrentDay),
		fmt.Sprintf("距离可卖出剩余：%d 天（基线）", r.RemainingDays),
		fmt.Sprintf("卖出延迟：%d 天", r.SellDelayDays),
		fmt.Sprintf("用于计算的有效天数：%d 天", r.EffectiveDays),
		fmt.Sprintf("每日涨跌停：%s%%", formatPlain(r.LimitPct)),
		fmt.Sprintf("最差（连续跌停）收益：%s（%s），卖出价值：%s",
			FormatCNY(r.MinProfit), FormatPct(r.MinRoi), FormatCNY(r.MinValue)),
		fmt.Sprintf("最好（连续涨停）收益：%s（%s），卖出价值：%s",
			FormatCNY(r.MaxProfit), FormatPct(r.MaxRoi), FormatCNY(r.MaxValue)),
		ExportDisclaimer,
	}
}

// ExportText joins ExportLines with newlines.
func ExportText(r *model.CalcResult) string {
	return strings.Join(ExportLines(r), "\n")
}
