package payout_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/radieske/betx-platform/internal/payout"
)

func legs(odds ...string) []payout.Leg {
	out := make([]payout.Leg, 0, len(odds))
	for i, o := range odds {
		out = append(out, payout.Leg{ID: string(rune('a' + i)), Odds: decimal.RequireFromString(o)})
	}
	return out
}

func TestCompute_Empty(t *testing.T) {
	for _, m := range []payout.Mode{payout.Parlay, payout.Single} {
		r := payout.Compute(nil, decimal.NewFromInt(50), m)
		assert.True(t, r.Potential.IsZero())
		assert.Empty(t, r.Description)
	}
}

func TestCompute_Parlay(t *testing.T) {
	// 50 × 1.86 × 3.6 × 4.1 = 50 × 27.4536
	r := payout.Compute(legs("1.86", "3.6", "4.1"), decimal.NewFromInt(50), payout.Parlay)
	assert.Equal(t, "1372.68", r.Potential.StringFixed(2))
	assert.True(t, r.Combined.Equal(decimal.RequireFromString("27.4536")))
	assert.Equal(t, "Parlay x3 • Combined 27.45", r.Description)
}

func TestCompute_Singles(t *testing.T) {
	r := payout.Compute(legs("1.86", "3.6", "4.1"), decimal.NewFromInt(90), payout.Single)
	assert.Equal(t, "286.80", r.Potential.StringFixed(2))
	assert.True(t, r.PerPick.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "Singles x3 • Each 30", r.Description)
}

func TestCompute_SinglesUnevenSplit(t *testing.T) {
	// 100/3 por seleção; arredonda só o total
	r := payout.Compute(legs("2", "2", "2"), decimal.NewFromInt(100), payout.Single)
	assert.Equal(t, "200.00", r.Potential.StringFixed(2))
	assert.Equal(t, "Singles x3 • Each 33.33", r.Description)
}

func TestCompute_SingleLegModesAgree(t *testing.T) {
	stake := decimal.RequireFromString("12.5")
	p := payout.Compute(legs("1.72"), stake, payout.Parlay)
	s := payout.Compute(legs("1.72"), stake, payout.Single)
	assert.True(t, p.Potential.Equal(s.Potential))
	assert.Equal(t, "21.50", p.Potential.StringFixed(2))
}

func TestModeValid(t *testing.T) {
	assert.True(t, payout.Parlay.Valid())
	assert.True(t, payout.Single.Valid())
	assert.False(t, payout.Mode("teaser").Valid())
}
