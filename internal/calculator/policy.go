package calculator

import (
	"math"

	"FundCalc/internal/model"
)

// fieldPolicy declares how one raw field is defaulted, floored and range-checked.
type fieldPolicy struct {
	Field      model.Field
	Kind       model.ErrorKind
	HasDefault bool // default replaces a non-finite parse only
	Default    float64
	Floor      bool
	Lower      float64
	LowerOpen  bool
	Upper      float64
	UpperOpen  bool
	Message    string
}

// Policies lists the rules in validation order; the first failure is reported.
var Policies = []fieldPolicy{
	{
		Field: model.FieldAmount, Kind: model.InvalidAmount,
		Lower: 0, LowerOpen: true, Upper: math.Inf(1),
		Message: "请输入有效的“申购金额”（大于 0 的数字）。",
	},
	{
		Field: model.FieldPremiumPct, Kind: model.InvalidPremium,
		Lower: math.Inf(-1), Upper: math.Inf(1),
		Message: "请输入有效的“溢价百分比”（例如 5 表示 5%）。可为负数。",
	},
	{
		Field: model.FieldSettleDays, Kind: model.InvalidSettleDays,
		HasDefault: true, Default: 3, Floor: true,
		Lower: 0, Upper: math.Inf(1),
		Message: "请输入有效的 “T+N” 的 N（非负整数）。",
	},
	{
		Field: model.FieldCurrentDay, Kind: model.InvalidCurrentDay,
		HasDefault: true, Default: 1, Floor: true,
		Lower: 1, Upper: math.Inf(1),
		Message: "请输入有效的“当前是申购第几天”（从 1 开始的正整数）。",
	},
	{
		Field: model.FieldSellDelayDays, Kind: model.InvalidSellDelay,
		HasDefault: true, Default: 0, Floor: true,
		Lower: 0, Upper: math.Inf(1),
		Message: "请输入有效的“卖出延迟天数”（非负整数）。",
	},
	{
		Field: model.FieldLimitPct, Kind: model.InvalidLimit,
		Lower: 0, LowerOpen: true, Upper: 100, UpperOpen: true,
		Message: "请输入有效的“每日涨跌停幅度”，范围建议在 (0, 100) 之间。",
	},
}

// normalize parses, defaults and floors one raw value under the policy.
func (p fieldPolicy) normalize(raw string) float64 {
	v := ParseNumber(raw)
	if p.HasDefault && !isFinite(v) {
		v = p.Default
	}
	if p.Floor {
		v = math.Floor(v)
	}
	return v
}

// accepts reports whether a normalized value satisfies the policy.
func (p fieldPolicy) accepts(v float64) bool {
	if !isFinite(v) {
		return false
	}
	if v < p.Lower || (p.LowerOpen && v == p.Lower) {
		return false
	}
	if v > p.Upper || (p.UpperOpen && v == p.Upper) {
		return false
	}
	return true
}

// toDays converts a validated, floored day count to int. Counts beyond
// math.MaxInt32 are clamped; they are far past any real settlement cycle and
// the clamp keeps remaining + delay inside int.
func toDays(v float64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func (p fieldPolicy) fail() *model.ValidationError {
	return &model.ValidationError{Kind: p.Kind, Field: p.Field, Message: p.Message}
}
