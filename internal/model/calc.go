package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Field names one CalcInput field.
type Field string

const (
	FieldAmount        Field = "amount"
	FieldPremiumPct    Field = "premiumPct"
	FieldSettleDays    Field = "settleDays"
	FieldCurrentDay    Field = "currentDay"
	FieldSellDelayDays Field = "sellDelayDays"
	FieldLimitPct      Field = "limitPct"
)

// ErrorKind identifies which validation rule rejected the input.
type ErrorKind string

const (
	InvalidAmount     ErrorKind = "INVALID_AMOUNT"
	InvalidPremium    ErrorKind = "INVALID_PREMIUM"
	InvalidSettleDays ErrorKind = "INVALID_SETTLE_DAYS"
	InvalidCurrentDay ErrorKind = "INVALID_CURRENT_DAY"
	InvalidSellDelay  ErrorKind = "INVALID_SELL_DELAY"
	InvalidLimit      ErrorKind = "INVALID_LIMIT"
)

// ValidationError is the only failure the scenario engine reports.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Field   Field     `json:"field"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// RawValue is a user-typed value. It decodes from a JSON string, number or null.
type RawValue string

func (v *RawValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("raw value must be a string or number: %w", err)
	}
	*v = RawValue(n.String())
	return nil
}

// CalcInput holds the raw text of one calculation request. Empty means absent.
type CalcInput struct {
	Amount        RawValue `json:"amount" yaml:"amount"`
	PremiumPct    RawValue `json:"premiumPct" yaml:"premium_pct"`
	SettleDays    RawValue `json:"settleDays" yaml:"settle_days"`
	CurrentDay    RawValue `json:"currentDay" yaml:"current_day"`
	SellDelayDays RawValue `json:"sellDelayDays" yaml:"sell_delay_days"`
	LimitPct      RawValue `json:"limitPct" yaml:"limit_pct"`
}

// Raw returns the raw text of the named field.
func (in CalcInput) Raw(f Field) string {
	switch f {
	case FieldAmount:
		return string(in.Amount)
	case FieldPremiumPct:
		return string(in.PremiumPct)
	case FieldSettleDays:
		return string(in.SettleDays)
	case FieldCurrentDay:
		return string(in.CurrentDay)
	case FieldSellDelayDays:
		return string(in.SellDelayDays)
	case FieldLimitPct:
		return string(in.LimitPct)
	}
	return ""
}

// Params is a fully validated, defaulted and floored CalcInput.
type Params struct {
	Amount        float64 `json:"amount"`
	PremiumPct    float64 `json:"premiumPct"`
	SettleDays    int     `json:"settleDays"` // the N in T+N
	CurrentDay    int     `json:"currentDay"` // 1 = today
	SellDelayDays int     `json:"sellDelayDays"`
	LimitPct      float64 `json:"limitPct"`
}

// Input renders the params back into raw form.
func (p Params) Input() CalcInput {
	return CalcInput{
		Amount:        RawValue(strconv.FormatFloat(p.Amount, 'f', -1, 64)),
		PremiumPct:    RawValue(strconv.FormatFloat(p.PremiumPct, 'f', -1, 64)),
		SettleDays:    RawValue(strconv.Itoa(p.SettleDays)),
		CurrentDay:    RawValue(strconv.Itoa(p.CurrentDay)),
		SellDelayDays: RawValue(strconv.Itoa(p.SellDelayDays)),
		LimitPct:      RawValue(strconv.FormatFloat(p.LimitPct, 'f', -1, 64)),
	}
}

// CalcResult is the outcome of one successful calculation.
// Prices are normalized to NAV = 1; profits and values are scaled to Amount.
type CalcResult struct {
	Params

	RemainingDays int     `json:"remainingDays"`
	EffectiveDays int     `json:"effectiveDays"`
	MarketPrice   float64 `json:"marketPrice"`

	MinPrice  float64 `json:"minPrice"`
	MaxPrice  float64 `json:"maxPrice"`
	MinRoi    float64 `json:"minRoi"`
	MaxRoi    float64 `json:"maxRoi"`
	MinProfit float64 `json:"minProfit"`
	MaxProfit float64 `json:"maxProfit"`
	MinValue  float64 `json:"minValue"`
	MaxValue  float64 `json:"maxValue"`
}

// NoteKind classifies the advisory note shown with a result.
type NoteKind string

const (
	NoteDeepDiscount NoteKind = "DEEP_DISCOUNT"
	NoteHighPremium  NoteKind = "HIGH_PREMIUM"
	NoteSellDelay    NoteKind = "SELL_DELAY"
	NoteGeneric      NoteKind = "GENERIC"
)

// Advisory is the presentational note attached to a result.
type Advisory struct {
	Kind NoteKind `json:"kind"`
	Text string   `json:"text"`
}
