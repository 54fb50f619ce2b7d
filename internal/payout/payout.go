package payout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/betx-platform/pkg/money"
)

// Mode define como o stake é aplicado às seleções
type Mode string

const (
	Parlay Mode = "parlay" // uma aposta combinada, odds multiplicadas
	Single Mode = "single" // stake dividido igualmente entre as seleções
)

func (m Mode) Valid() bool { return m == Parlay || m == Single }

// Leg é o mínimo que o cálculo precisa de uma seleção
type Leg struct {
	ID   string
	Odds decimal.Decimal
}

// Result é derivado, nunca persistido.
// Combined mantém precisão total (só exibição); Potential já vem arredondado.
type Result struct {
	Potential   decimal.Decimal `json:"potential"`
	Combined    decimal.Decimal `json:"combinedOdds"`
	PerPick     decimal.Decimal `json:"perPickStake"`
	Description string          `json:"description"`
}

// Compute calcula o retorno potencial de um conjunto de seleções. Função pura.
func Compute(legs []Leg, stake decimal.Decimal, mode Mode) Result {
	if len(legs) == 0 {
		return Result{Potential: decimal.Zero, Combined: decimal.Zero, PerPick: decimal.Zero}
	}
	n := len(legs)

	if mode == Single {
		each := stake.Div(decimal.NewFromInt(int64(n)))
		total := decimal.Zero
		for _, l := range legs {
			total = total.Add(each.Mul(l.Odds))
		}
		return Result{
			Potential:   money.Round2(total),
			Combined:    decimal.Zero,
			PerPick:     each,
			Description: fmt.Sprintf("Singles x%d • Each %s", n, money.Display(each)),
		}
	}

	combo := decimal.NewFromInt(1)
	for _, l := range legs {
		combo = combo.Mul(l.Odds)
	}
	return Result{
		Potential:   money.Round2(stake.Mul(combo)),
		Combined:    combo,
		PerPick:     stake,
		Description: fmt.Sprintf("Parlay x%d • Combined %s", n, money.Display(combo)),
	}
}
