package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FundCalc/internal/model"
)

func TestSelectNote_AllBoundaries(t *testing.T) {
	tests := []struct {
		premium float64
		delay   int
		kind    model.NoteKind
	}{
		{-0.6, 0, model.NoteDeepDiscount},
		{-0.5, 0, model.NoteDeepDiscount},
		{-0.5, 3, model.NoteDeepDiscount},
		{-0.49, 0, model.NoteGeneric},
		{-0.49, 1, model.NoteSellDelay},
		{0.3, 0, model.NoteHighPremium},
		{0.3, 2, model.NoteHighPremium},
		{0.29, 0, model.NoteGeneric},
		{0.29, 1, model.NoteSellDelay},
		{0.05, 0, model.NoteGeneric},
		{0, 0, model.NoteGeneric},
	}
	for _, tt := range tests {
		got := SelectNote(tt.premium, tt.delay)
		assert.Equal(t, tt.kind, got, "premium %.2f delay %d", tt.premium, tt.delay)
	}
}

func TestAdvise_DeepDiscountIgnoresOtherFields(t *testing.T) {
	for _, amount := range []float64{1, 1e6} {
		for _, limit := range []float64{1, 10, 50} {
			res := &model.CalcResult{Params: model.Params{
				Amount: amount, PremiumPct: -60, SettleDays: 3, CurrentDay: 1, SellDelayDays: 2, LimitPct: limit,
			}}
			adv := Advise(res)
			assert.Equal(t, model.NoteDeepDiscount, adv.Kind)
			assert.Equal(t, Notes[model.NoteDeepDiscount], adv.Text)
		}
	}
}

func TestNotes_EveryKindHasText(t *testing.T) {
	for _, k := range []model.NoteKind{model.NoteDeepDiscount, model.NoteHighPremium, model.NoteSellDelay, model.NoteGeneric} {
		assert.NotEmpty(t, Notes[k], string(k))
	}
}
