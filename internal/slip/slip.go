// Package slip implementa o bilhete de apostas: seleções únicas por resultado,
// prévia de retorno e colocação da aposta contra o ledger da carteira.
package slip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/payout"
	"github.com/radieske/betx-platform/pkg/currency"
	"github.com/radieske/betx-platform/pkg/money"
)

var (
	ErrNoSelections   = errors.New("no selections")
	ErrInvalidStake   = errors.New("stake must be positive")
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrInvalidMode    = errors.New("invalid mode")
)

// Outcome usa os seletores da UI: A (mandante), Draw, B (visitante)
type Outcome string

const (
	Home Outcome = "A"
	Draw Outcome = "Draw"
	Away Outcome = "B"
)

// ParseOutcome aceita "A"/"home", "Draw"/"draw", "B"/"away"
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "home":
		return Home, nil
	case "draw", "x":
		return Draw, nil
	case "b", "away":
		return Away, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

// Pick é imutável depois de adicionado
type Pick struct {
	ID      string          `json:"id"`
	MatchID string          `json:"matchId"`
	Sport   catalog.Sport   `json:"sport"`
	Label   string          `json:"label"`
	Odds    decimal.Decimal `json:"odds"`
}

// PickID é a identidade derivada de (partida, resultado)
func PickID(matchID string, o Outcome) string { return matchID + "-" + string(o) }

// Debiter é o pedaço do ledger que o bilhete usa
type Debiter interface {
	Debit(ctx context.Context, userKey string, c currency.Wallet, amount decimal.Decimal) (decimal.Decimal, error)
}

// Receipt registra apenas o comprometimento do stake; ganhos não são creditados aqui
type Receipt struct {
	Ticket    string          `json:"ticket"`
	UserKey   string          `json:"userKey"`
	Mode      payout.Mode     `json:"mode"`
	Stake     decimal.Decimal `json:"stake"`
	Currency  currency.Wallet `json:"currency"`
	Potential decimal.Decimal `json:"potentialPayout"`
	Picks     []Pick          `json:"picks"`
	Balance   decimal.Decimal `json:"balance"`
	PlacedAt  time.Time       `json:"placedAt"`
}

// View é a projeção somente leitura usada para renderizar o bilhete
type View struct {
	Picks  []Pick          `json:"picks"`
	Mode   payout.Mode     `json:"mode"`
	Stake  decimal.Decimal `json:"stake"`
	Payout payout.Result   `json:"payout"`
}

// NewTicket gera o identificador opaco do bilhete (6 caracteres)
var NewTicket = func() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

type Slip struct {
	mu    sync.Mutex
	picks []Pick
	mode  payout.Mode
	now   func() time.Time
}

// New cria um bilhete vazio em modo parlay
func New() *Slip {
	return &Slip{mode: payout.Parlay, now: time.Now}
}

// AddPick adiciona a seleção; repetir a mesma (partida, resultado) não faz nada.
// Retorna true quando a seleção entrou no bilhete.
func (s *Slip) AddPick(m catalog.Match, o Outcome) (bool, error) {
	p, err := resolve(m, o)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.picks {
		if existing.ID == p.ID {
			return false, nil
		}
	}
	s.picks = append(s.picks, p)
	return true, nil
}

func resolve(m catalog.Match, o Outcome) (Pick, error) {
	var label string
	var odds decimal.Decimal
	switch o {
	case Home:
		label, odds = m.TeamA, m.Odds.A
	case Away:
		label, odds = m.TeamB, m.Odds.B
	case Draw:
		if m.Odds.Draw == nil {
			return Pick{}, fmt.Errorf("%w: market %s of %s has no draw", ErrInvalidOutcome, m.Market, m.ID)
		}
		label, odds = "Draw", *m.Odds.Draw
	default:
		return Pick{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, string(o))
	}
	if odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return Pick{}, fmt.Errorf("%w: odds %s must be greater than 1", ErrInvalidOutcome, odds)
	}
	return Pick{ID: PickID(m.ID, o), MatchID: m.ID, Sport: m.Sport, Label: label, Odds: odds}, nil
}

// RemovePick remove pela identidade; ausente é no-op
func (s *Slip) RemovePick(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.picks {
		if p.ID == id {
			s.picks = append(s.picks[:i:i], s.picks[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Slip) Clear() {
	s.mu.Lock()
	s.picks = nil
	s.mu.Unlock()
}

func (s *Slip) SetMode(m payout.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return nil
}

func (s *Slip) Mode() payout.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Picks retorna uma cópia na ordem de inserção
func (s *Slip) Picks() []Pick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pick(nil), s.picks...)
}

func (s *Slip) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.picks)
}

// Payout recalcula o retorno potencial para o stake informado
func (s *Slip) Payout(stake decimal.Decimal) payout.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return payout.Compute(legs(s.picks), stake, s.mode)
}

func (s *Slip) View(stake decimal.Decimal) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Picks:  append([]Pick{}, s.picks...),
		Mode:   s.mode,
		Stake:  stake,
		Payout: payout.Compute(legs(s.picks), stake, s.mode),
	}
}

// PlaceBet debita o stake, gera o ticket e limpa o bilhete.
// Em qualquer falha o bilhete e o saldo ficam como estavam.
func (s *Slip) PlaceBet(ctx context.Context, l Debiter, userKey string, c currency.Wallet, stake decimal.Decimal) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.picks) == 0 {
		return Receipt{}, ErrNoSelections
	}
	// o stake do ticket é o mesmo valor debitado do ledger
	stake = money.Round2(stake)
	if !stake.IsPositive() {
		return Receipt{}, fmt.Errorf("%w: %s", ErrInvalidStake, stake)
	}

	res := payout.Compute(legs(s.picks), stake, s.mode)
	bal, err := l.Debit(ctx, userKey, c, stake)
	if err != nil {
		return Receipt{}, fmt.Errorf("place bet: %w", err)
	}

	r := Receipt{
		Ticket:    NewTicket(),
		UserKey:   userKey,
		Mode:      s.mode,
		Stake:     stake,
		Currency:  c,
		Potential: res.Potential,
		Picks:     append([]Pick(nil), s.picks...),
		Balance:   bal,
		PlacedAt:  s.now().UTC(),
	}
	s.picks = nil
	return r, nil
}

func legs(picks []Pick) []payout.Leg {
	out := make([]payout.Leg, len(picks))
	for i, p := range picks {
		out[i] = payout.Leg{ID: p.ID, Odds: p.Odds}
	}
	return out
}
