package calculator

import (
	"FundCalc/internal/model"
)

// Validate normalizes raw input through the policy table. It returns either fully
// normalized Params or the first *model.ValidationError, never a partial result.
func Validate(in model.CalcInput) (model.Params, error) {
	values := make(map[model.Field]float64, len(Policies))
	for _, p := range Policies {
		v := p.normalize(in.Raw(p.Field))
		if !p.accepts(v) {
			return model.Params{}, p.fail()
		}
		values[p.Field] = v
	}
	return model.Params{
		Amount:        values[model.FieldAmount],
		PremiumPct:    values[model.FieldPremiumPct],
		SettleDays:    toDays(values[model.FieldSettleDays]),
		CurrentDay:    toDays(values[model.FieldCurrentDay]),
		SellDelayDays: toDays(values[model.FieldSellDelayDays]),
		LimitPct:      values[model.FieldLimitPct],
	}, nil
}

// Compute derives the worst/best scenario from validated params, with NAV fixed at 1.
func Compute(p model.Params) *model.CalcResult {
	remaining := RemainingDays(p.SettleDays, p.CurrentDay)
	effective := remaining + p.SellDelayDays

	premium := p.PremiumPct / 100
	limit := p.LimitPct / 100
	m0 := 1 * (1 + premium)

	minPrice, maxPrice := CompoundRange(m0, limit, effective)
	minRoi := minPrice - 1
	maxRoi := maxPrice - 1
	minProfit := p.Amount * minRoi
	maxProfit := p.Amount * maxRoi

	return &model.CalcResult{
		Params:        p,
		RemainingDays: remaining,
		EffectiveDays: effective,
		MarketPrice:   m0,
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		MinRoi:        minRoi,
		MaxRoi:        maxRoi,
		MinProfit:     minProfit,
		MaxProfit:     maxProfit,
		MinValue:      p.Amount + minProfit,
		MaxValue:      p.Amount + maxProfit,
	}
}

// Calculate is the engine entry point: raw text in, a result or a validation error out.
// It is pure and safe for concurrent use.
func Calculate(in model.CalcInput) (*model.CalcResult, error) {
	p, err := Validate(in)
	if err != nil {
		return nil, err
	}
	return Compute(p), nil
}
