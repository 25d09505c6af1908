package strategy

import "FundCalc/internal/model"

// Notes maps a note kind to the text shown beside a result.
var Notes = map[model.NoteKind]string{
	model.NoteDeepDiscount: "提示：你输入的是明显折价（溢价为负且幅度较大）。结果依然按同一逻辑估算。",
	model.NoteHighPremium:  "提示：溢价偏高时，连续跌停情景下回撤会更剧烈；请谨慎评估流动性与溢价回归风险。",
	model.NoteSellDelay:    "提示：你启用了“卖出延迟”。这会把可卖日当天封板/卖不出等情况折算成额外持有天数。",
	model.NoteGeneric:      "这是一个“区间估算器”：只把溢价与涨跌停复利叠加，帮助你快速理解风险/弹性。",
}

// Rules is scanned top-down; the first matching rule picks the note.
// The premium thresholds are presentation heuristics, not domain law.
var Rules = []struct {
	Kind  model.NoteKind
	Match func(premium float64, sellDelayDays int) bool
}{
	{model.NoteDeepDiscount, func(p float64, _ int) bool { return p <= -0.5 }},
	{model.NoteHighPremium, func(p float64, _ int) bool { return p >= 0.3 }},
	{model.NoteSellDelay, func(_ float64, d int) bool { return d > 0 }},
}

// DefaultNote applies when no rule matches.
const DefaultNote = model.NoteGeneric

// SelectNote classifies a premium ratio (premiumPct/100) and sell delay into exactly one note kind.
func SelectNote(premium float64, sellDelayDays int) model.NoteKind {
	for _, r := range Rules {
		if r.Match(premium, sellDelayDays) {
			return r.Kind
		}
	}
	return DefaultNote
}

// Advise returns the advisory note for a computed result.
func Advise(res *model.CalcResult) model.Advisory {
	kind := SelectNote(res.PremiumPct/100, res.SellDelayDays)
	return model.Advisory{Kind: kind, Text: Notes[kind]}
}
