// Package money concentra a aritmética monetária em ponto fixo.
// Todo valor persistido ou exibido passa por Round2.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 arredonda para 2 casas (half-up para valores não negativos)
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Parse converte texto da UI em decimal; string vazia é inválida
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// Percent calcula round2(amount * pct / 100)
func Percent(amount decimal.Decimal, pct int) decimal.Decimal {
	return Round2(amount.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)))
}

// Display formata com no máximo 2 casas, sem zeros à direita ("30", "27.45")
func Display(d decimal.Decimal) string {
	return Round2(d).String()
}
