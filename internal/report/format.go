// Package report holds pure presentation projections over a calculation result.
package report

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"FundCalc/internal/model"
)

// Tone is the colour class of a signed figure.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// SignOf classifies v for display.
func SignOf(v float64) Tone {
	switch {
	case v > 0:
		return TonePositive
	case v < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// FormatCNY renders an amount as yuan with thousands grouping and two decimals, e.g. -¥2,345.50.
// The integer part is grouped as a big.Int so magnitudes past int64 stay exact.
func FormatCNY(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if math.IsInf(v, 0) {
		return sign + "¥∞"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "0.00" {
		sign = ""
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + "¥" + s
	}
	return sign + "¥" + humanize.BigComma(n) + "." + frac
}

// FormatPct renders a ratio as a percentage with two decimals, e.g. 0.39755 -> 39.76%.
func FormatPct(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 2, 64) + "%"
}

// formatPlain renders a user-supplied number the way a JavaScript template
// literal would: shortest digits, switching to exponent form below 1e-6 and
// from 1e21 up, e.g. 5 -> "5", 1e-7 -> "1e-7", 1.5e21 -> "1.5e+21".
func formatPlain(v float64) string {
	if a := math.Abs(v); a != 0 && (a < 1e-6 || a >= 1e21) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		expSign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + expSign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MetaBadge summarizes the day arithmetic on one line.
func MetaBadge(r *model.CalcResult) string {
	return fmt.Sprintf("T+%d · 第%d天 · 剩余%d天 · 延迟+%d · 有效%d天",
		r.SettleDays, r.CurrentDay, r.RemainingDays, r.SellDelayDays, r.EffectiveDays)
}

// RangeText describes the profit range with the day breakdown.
func RangeText(r *model.CalcResult) string {
	return fmt.Sprintf("有效天数：%d（剩余 %d + 延迟 %d） · 区间：%s（%s） ～ %s（%s）",
		r.EffectiveDays, r.RemainingDays, r.SellDelayDays,
		FormatCNY(r.MinProfit), FormatPct(r.MinRoi),
		FormatCNY(r.MaxProfit), FormatPct(r.MaxRoi))
}

// Scenario is the display form of one bound.
type Scenario struct {
	Value      string `json:"value"`
	Profit     string `json:"profit"`
	Roi        string `json:"roi"`
	ProfitTone Tone   `json:"profitTone"`
	RoiTone    Tone   `json:"roiTone"`
}

// View bundles every display string derived from a result.
type View struct {
	Badge     string   `json:"badge"`
	RangeText string   `json:"rangeText"`
	Worst     Scenario `json:"worst"`
	Best      Scenario `json:"best"`
	Note      string   `json:"note"`
}

// NewView projects a result and its advisory into display strings.
func NewView(r *model.CalcResult, adv model.Advisory) View {
	return View{
		Badge:     MetaBadge(r),
		RangeText: RangeText(r),
		Worst: Scenario{
			Value:      FormatCNY(r.MinValue),
			Profit:     FormatCNY(r.MinProfit),
			Roi:        FormatPct(r.MinRoi),
			ProfitTone: SignOf(r.MinProfit),
			RoiTone:    SignOf(r.MinRoi),
		},
		Best: Scenario{
			Value:      FormatCNY(r.MaxValue),
			Profit:     FormatCNY(r.MaxProfit),
			Roi:        FormatPct(r.MaxRoi),
			ProfitTone: SignOf(r.MaxProfit),
			RoiTone:    SignOf(r.MaxRoi),
		},
		Note: adv.Text,
	}
}
