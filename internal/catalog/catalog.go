// Package catalog é o colaborador de conteúdo: partidas com odds e tips à venda.
// O core trata estes dados como imutáveis durante uma operação.
package catalog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

type Sport string

const (
	Football   Sport = "Football"
	Tennis     Sport = "Tennis"
	Basketball Sport = "Basketball"
	Cricket    Sport = "Cricket"
)

// Market: "1x2" tem empate, "moneyline" não
type Market string

const (
	Market1x2       Market = "1x2"
	MarketMoneyline Market = "moneyline"
)

type Odds struct {
	A    decimal.Decimal  `json:"A"`
	Draw *decimal.Decimal `json:"Draw,omitempty"`
	B    decimal.Decimal  `json:"B"`
}

type Match struct {
	ID       string    `json:"id"`
	Sport    Sport     `json:"sport"`
	League   string    `json:"league"`
	StartsAt time.Time `json:"startTs"`
	TeamA    string    `json:"teamA"`
	TeamB    string    `json:"teamB"`
	Market   Market    `json:"market"`
	Odds     Odds      `json:"odds"`
	Trending bool      `json:"trending,omitempty"`
}

type Tipster struct {
	Name    string  `json:"name"`
	WinRate float64 `json:"winRate"`
	ROI     float64 `json:"roi"`
	Streak  int     `json:"streak"`
}

// Tip à venda. HiddenMarket/HiddenOdds/Reveal só vão para a UI depois do release.
type Tip struct {
	ID           string          `json:"id"`
	League       string          `json:"league"`
	Match        string          `json:"match"`
	HiddenMarket string          `json:"-"`
	HiddenOdds   decimal.Decimal `json:"-"`
	Cutoff       time.Time       `json:"cutoff"`
	Tipster      Tipster         `json:"tipster"`
	Price        decimal.Decimal `json:"price"`
	Reveal       string          `json:"-"`
}

// Open indica se a tip ainda aceita compras em now
func (t Tip) Open(now time.Time) bool { return now.Before(t.Cutoff) }

type TipSort string

const (
	SortSoon    TipSort = "soon"
	SortWinRate TipSort = "winrate"
	SortPrice   TipSort = "price"
)

// Catalog é somente leitura depois de criado
type Catalog struct {
	matches  []Match
	tips     []Tip
	profiles []Profile
}

func New(matches []Match, tips []Tip) *Catalog {
	return &Catalog{matches: matches, tips: tips}
}

func (c *Catalog) Match(id string) (Match, error) {
	for _, m := range c.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return Match{}, ErrNotFound
}

// Matches filtra por esporte; esporte vazio retorna todas
func (c *Catalog) Matches(sport Sport) []Match {
	out := make([]Match, 0, len(c.matches))
	for _, m := range c.matches {
		if sport == "" || m.Sport == sport {
			out = append(out, m)
		}
	}
	return out
}

func (c *Catalog) Trending() []Match {
	var out []Match
	for _, m := range c.matches {
		if m.Trending {
			out = append(out, m)
		}
	}
	return out
}

func (c *Catalog) Tip(id string) (Tip, error) {
	for _, t := range c.tips {
		if t.ID == id {
			return t, nil
		}
	}
	return Tip{}, ErrNotFound
}

// Tips busca por liga, partida ou nome do tipster e ordena como a página de tips
func (c *Catalog) Tips(query string, by TipSort) []Tip {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Tip
	for _, t := range c.tips {
		if q == "" ||
			strings.Contains(strings.ToLower(t.League), q) ||
			strings.Contains(strings.ToLower(t.Match), q) ||
			strings.Contains(strings.ToLower(t.Tipster.Name), q) {
			out = append(out, t)
		}
	}
	switch by {
	case SortWinRate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Tipster.WinRate > out[j].Tipster.WinRate })
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Cutoff.Before(out[j].Cutoff) })
	}
	return out
}
