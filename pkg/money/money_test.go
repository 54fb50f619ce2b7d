package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betx-platform/pkg/money"
)

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"7.5", "7.5"},
		{"1372.68", "1372.68"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := money.Round2(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestPercent(t *testing.T) {
	got := money.Percent(decimal.NewFromInt(25), 30)
	assert.Equal(t, "7.5", got.String())
	assert.Equal(t, "7.50", got.StringFixed(2))
}

func TestParse(t *testing.T) {
	d, err := money.Parse("12.345")
	require.NoError(t, err)
	assert.Equal(t, "12.35", money.Display(d))

	_, err = money.Parse("")
	assert.Error(t, err)
}

func TestRepeatedOpsDoNotDrift(t *testing.T) {
	bal := decimal.Zero
	step := decimal.RequireFromString("0.1")
	for i := 0; i < 1000; i++ {
		bal = money.Round2(bal.Add(step))
	}
	assert.True(t, bal.Equal(decimal.NewFromInt(100)))
}
