package notifier

import (
	"fmt"
	"html"
	"strings"

	"FundCalc/internal/model"
	"FundCalc/internal/report"
)

var toneMark = map[report.Tone]string{
	report.TonePositive: "🟢",
	report.ToneNegative: "🔴",
	report.ToneNeutral:  "⚪",
}

// FormatCalcCard formats a calculation result into a Telegram message.
func FormatCalcCard(title string, r *model.CalcResult, adv model.Advisory) string {
	v := report.NewView(r, adv)
	var b strings.Builder

	if title == "" {
		title = report.ExportTitle
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", html.EscapeString(title)))
	b.WriteString(fmt.Sprintf("<code>%s</code>\n\n", v.Badge))

	b.WriteString(fmt.Sprintf("申购金额: %s | 溢价率: %s\n", report.FormatCNY(r.Amount), report.FormatPct(r.PremiumPct/100)))
	b.WriteString(fmt.Sprintf("每日涨跌停: %s\n\n", report.FormatPct(r.LimitPct/100)))

	b.WriteString(fmt.Sprintf("📉 <b>最差</b> (连续跌停 %d 天)\n", r.EffectiveDays))
	b.WriteString(fmt.Sprintf("  %s 盈亏 %s (%s)\n", toneMark[v.Worst.ProfitTone], v.Worst.Profit, v.Worst.Roi))
	b.WriteString(fmt.Sprintf("  卖出市值 %s\n", v.Worst.Value))
	b.WriteString(fmt.Sprintf("📈 <b>最好</b> (连续涨停 %d 天)\n", r.EffectiveDays))
	b.WriteString(fmt.Sprintf("  %s 盈亏 %s (%s)\n", toneMark[v.Best.ProfitTone], v.Best.Profit, v.Best.Roi))
	b.WriteString(fmt.Sprintf("  卖出市值 %s\n\n", v.Best.Value))

	b.WriteString(fmt.Sprintf("<i>%s</i>", html.EscapeString(v.Note)))
	return b.String()
}

// FormatValidationError formats a rejected input.
func FormatValidationError(err *model.ValidationError) string {
	return fmt.Sprintf("❌ %s\n<code>%s</code>", html.EscapeString(err.Message), err.Kind)
}

// WatchEntry is one watchlist row as evaluated at push time.
// Err is set when the stored input no longer validates.
type WatchEntry struct {
	Sub    model.Subscription
	Result *model.CalcResult
	Err    error
}

// FormatWatchlist formats the tracked subscriptions.
func FormatWatchlist(entries []WatchEntry) string {
	if len(entries) == 0 {
		return "📦 持仓为空。用 /track 添加一笔申购。"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>在途持仓</b> (%d)\n", len(entries)))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("\n<b>%s</b> <code>%s</code>\n", html.EscapeString(e.Sub.Name), ShortID(e.Sub.ID)))
		b.WriteString(fmt.Sprintf("  申购日 %s\n", e.Sub.SubscribedOn.Format("2006-01-02")))
		if e.Err != nil {
			b.WriteString(fmt.Sprintf("  ⚠️ %s\n", html.EscapeString(e.Err.Error())))
			continue
		}
		r := e.Result
		b.WriteString(fmt.Sprintf("  <code>%s</code>\n", report.MetaBadge(r)))
		b.WriteString(fmt.Sprintf("  区间 %s ~ %s (%s ~ %s)\n",
			report.FormatCNY(r.MinProfit), report.FormatCNY(r.MaxProfit),
			report.FormatPct(r.MinRoi), report.FormatPct(r.MaxRoi)))
		if r.RemainingDays == 0 {
			b.WriteString("  ✅ 已到可卖日\n")
		}
	}
	return b.String()
}

// FormatHelp lists the commands with the values used for omitted arguments.
func FormatHelp(defaults model.CalcInput) string {
	var b strings.Builder
	b.WriteString("🧮 <b>溢价基金收益区间计算器</b>\n\n")
	b.WriteString("<code>/calc 金额 溢价% [T+N] [第几天] [卖出延迟] [涨跌停%]</code>\n")
	b.WriteString("  例: <code>/calc 10000 5</code>\n")
	b.WriteString("<code>/track 名称 金额 溢价% [T+N] [卖出延迟] [涨跌停%]</code>\n")
	b.WriteString("  以今天为第1天加入持仓（周末顺延至周一），每个交易日推送区间\n")
	b.WriteString("<code>/untrack ID</code> 移除持仓\n")
	b.WriteString("<code>/list</code> 查看持仓\n\n")
	b.WriteString(fmt.Sprintf("省略或填 - 的参数取默认: T+%s 第%s天 延迟%s 涨跌停%s%%",
		defaults.SettleDays, defaults.CurrentDay, defaults.SellDelayDays, defaults.LimitPct))
	return b.String()
}

// ShortID is the ID prefix shown to users; /untrack accepts it.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
