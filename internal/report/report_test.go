package report

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundCalc/internal/calculator"
	"FundCalc/internal/model"
	"FundCalc/internal/strategy"
)

func calc(t *testing.T, amount, premium, settle, day, delay, limit string) *model.CalcResult {
	t.Helper()
	res, err := calculator.Calculate(model.CalcInput{
		Amount:        model.RawValue(amount),
		PremiumPct:    model.RawValue(premium),
		SettleDays:    model.RawValue(settle),
		CurrentDay:    model.RawValue(day),
		SellDelayDays: model.RawValue(delay),
		LimitPct:      model.RawValue(limit),
	})
	require.NoError(t, err)
	return res
}

func TestFormatCNY(t *testing.T) {
	assert.Equal(t, "¥10,000.00", FormatCNY(10000))
	assert.Equal(t, "-¥2,345.50", FormatCNY(-2345.5))
	assert.Equal(t, "¥0.00", FormatCNY(0))
	assert.Equal(t, "¥999.99", FormatCNY(999.99))
	assert.Equal(t, "¥1,234,567.10", FormatCNY(1234567.1))
	assert.Equal(t, "¥10,000,000,000,000,000,000.00", FormatCNY(1e19))
	assert.Equal(t, "-¥100,000,000,000,000,000,000.00", FormatCNY(-1e20))
	assert.Equal(t, "¥∞", FormatCNY(math.Inf(1)))
	assert.Equal(t, "-¥∞", FormatCNY(math.Inf(-1)))
	assert.Equal(t, "¥0.00", FormatCNY(-0.004))
}

func TestFormatPlain(t *testing.T) {
	assert.Equal(t, "5", formatPlain(5))
	assert.Equal(t, "-2.5", formatPlain(-2.5))
	assert.Equal(t, "0", formatPlain(0))
	assert.Equal(t, "0.000001", formatPlain(1e-6))
	assert.Equal(t, "1e-7", formatPlain(1e-7))
	assert.Equal(t, "-1.5e-7", formatPlain(-1.5e-7))
	assert.Equal(t, "100000000000000000000", formatPlain(1e20))
	assert.Equal(t, "1e+21", formatPlain(1e21))
	assert.Equal(t, "1.5e+21", formatPlain(1.5e21))
}

func TestExportText_LargeAmount(t *testing.T) {
	lines := ExportLines(calc(t, "1e20", "0", "1", "1", "0", "50"))
	assert.Equal(t, "申购金额：¥100,000,000,000,000,000,000.00", lines[1])
	assert.Equal(t, "最差（连续跌停）收益：-¥50,000,000,000,000,000,000.00（-50.00%），卖出价值：¥50,000,000,000,000,000,000.00", lines[9])
	assert.Equal(t, "最好（连续涨停）收益：¥50,000,000,000,000,000,000.00（50.00%），卖出价值：¥150,000,000,000,000,000,000.00", lines[10])
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "5.00%", FormatPct(0.05))
	assert.Equal(t, "-25.00%", FormatPct(-0.25))
	assert.Equal(t, "0.00%", FormatPct(0))
}

func TestSignOf(t *testing.T) {
	assert.Equal(t, TonePositive, SignOf(0.01))
	assert.Equal(t, ToneNegative, SignOf(-0.01))
	assert.Equal(t, ToneNeutral, SignOf(0))
}

func TestMetaBadgeAndRangeText(t *testing.T) {
	r := calc(t, "10000", "0", "1", "1", "0", "10")
	assert.Equal(t, "T+1 · 第1天 · 剩余1天 · 延迟+0 · 有效1天", MetaBadge(r))
	assert.Equal(t, "有效天数：1（剩余 1 + 延迟 0） · 区间：-¥1,000.00（-10.00%） ～ ¥1,000.00（10.00%）", RangeText(r))
}

func TestExportText_FieldOrder(t *testing.T) {
	r := calc(t, "10000", "0", "1", "1", "0", "10")
	want := strings.Join([]string{
		"基金溢价预期收益区间（估算）",
		"申购金额：¥10,000.00",
		"当前溢价：0%",
		"确认周期：T+1",
		"当前第几天：第1天（1=今天）",
		"距离可卖出剩余：1 天（基线）",
		"卖出延迟：0 天",
		"用于计算的有效天数：1 天",
		"每日涨跌停：10%",
		"最差（连续跌停）收益：-¥1,000.00（-10.00%），卖出价值：¥9,000.00",
		"最好（连续涨停）收益：¥1,000.00（10.00%），卖出价值：¥11,000.00",
		"备注：默认按NAV不变简化，仅用于区间理解，不构成预测。",
	}, "\n")
	assert.Equal(t, want, ExportText(r))
}

func TestExportText_TypicalPremium(t *testing.T) {
	r := calc(t, "10000", "5.5", "3", "1", "2", "10")
	lines := ExportLines(r)
	require.Len(t, lines, 12)
	assert.Equal(t, "当前溢价：5.5%", lines[2])
	assert.Equal(t, "卖出延迟：2 天", lines[6])
	assert.Equal(t, "用于计算的有效天数：5 天", lines[7])
	assert.True(t, strings.HasPrefix(lines[9], "最差（连续跌停）收益：-¥"))
	assert.True(t, strings.HasPrefix(lines[10], "最好（连续涨停）收益：¥"))
	assert.Equal(t, ExportDisclaimer, lines[11])
}

func TestNewView(t *testing.T) {
	r := calc(t, "10000", "0", "1", "1", "0", "10")
	v := NewView(r, strategy.Advise(r))
	assert.Equal(t, "¥9,000.00", v.Worst.Value)
	assert.Equal(t, ToneNegative, v.Worst.ProfitTone)
	assert.Equal(t, TonePositive, v.Best.RoiTone)
	assert.Equal(t, strategy.Notes[model.NoteGeneric], v.Note)
}
