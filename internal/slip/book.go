package slip

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/pkg/contracts/events"
	"github.com/radieske/betx-platform/pkg/currency"
)

// Publisher recebe as apostas colocadas (Kafka em produção)
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Book guarda um bilhete por userKey, em memória do processo
type Book struct {
	mu     sync.Mutex
	slips  map[string]*Slip
	ledger Debiter
	pub    Publisher
	log    *zap.Logger

	// Métricas
	OnPlaced func(r Receipt)
}

func NewBook(l Debiter, pub Publisher, log *zap.Logger) *Book {
	return &Book{slips: make(map[string]*Slip), ledger: l, pub: pub, log: log}
}

// Slip retorna o bilhete do usuário, criando um vazio na primeira vez
func (b *Book) Slip(userKey string) *Slip {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slips[userKey]
	if !ok {
		s = New()
		b.slips[userKey] = s
	}
	return s
}

// Place coloca a aposta do bilhete do usuário e publica bet_placed.
// Falha na publicação não desfaz a aposta.
func (b *Book) Place(ctx context.Context, userKey string, c currency.Wallet, stake decimal.Decimal) (Receipt, error) {
	r, err := b.Slip(userKey).PlaceBet(ctx, b.ledger, userKey, c, stake)
	if err != nil {
		return Receipt{}, err
	}

	b.log.Info("bet placed",
		zap.String("ticket", r.Ticket),
		zap.String("user", userKey),
		zap.String("mode", string(r.Mode)),
		zap.String("currency", c.String()),
		zap.String("stake", r.Stake.String()),
		zap.String("potential", r.Potential.StringFixed(2)),
	)
	if b.OnPlaced != nil {
		b.OnPlaced(r)
	}
	if b.pub != nil {
		if err := b.pub.PublishBetPlaced(ctx, toEvent(r)); err != nil {
			b.log.Warn("publish bet_placed failed", zap.String("ticket", r.Ticket), zap.Error(err))
		}
	}
	return r, nil
}

func toEvent(r Receipt) events.BetPlaced {
	picks := make([]events.PickEntry, len(r.Picks))
	for i, p := range r.Picks {
		picks[i] = events.PickEntry{ID: p.ID, MatchID: p.MatchID, Label: p.Label, Odds: p.Odds.String()}
	}
	return events.BetPlaced{
		Ticket:    r.Ticket,
		UserKey:   r.UserKey,
		Mode:      string(r.Mode),
		Currency:  r.Currency.String(),
		Stake:     r.Stake.String(),
		Potential: r.Potential.StringFixed(2),
		Picks:     picks,
	}
}
