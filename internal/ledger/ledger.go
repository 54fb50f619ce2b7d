// Package ledger mantém os saldos por usuário e por moeda.
// Cada escopo (carteira, marketplace de tips) é um Ledger independente com seu próprio conjunto de moedas.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/pkg/currency"
	"github.com/radieske/betx-platform/pkg/money"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownCurrency   = currency.ErrUnknown
)

// Op identifica o tipo de mutação (label de métrica)
type Op string

const (
	OpCredit Op = "credit"
	OpDebit  Op = "debit"
)

// Prefixos de chave dos snapshots
const (
	WalletPrefix = "balances"
	TipsPrefix   = "tips:balances"
)

// Balances é o snapshot de um usuário: toda moeda do escopo presente
type Balances[C currency.Code] map[C]decimal.Decimal

// Ledger aplica créditos e débitos de forma atômica.
// O saldo nunca fica negativo e todo resultado é arredondado para 2 casas.
type Ledger[C currency.Code] struct {
	mu         sync.Mutex
	store      store.Store
	log        *zap.Logger
	prefix     string
	currencies []C
	shared     bool // store compartilhado entre processos: não confia no cache
	users      map[string]map[C]decimal.Decimal

	OnMutation func(op Op, c C)                        // métricas
	OnChange   func(userKey string, snapshot Balances[C]) // push para a UI
}

// New cria um ledger para o escopo dado; currencies define o conjunto fechado de moedas
func New[C currency.Code](s store.Store, log *zap.Logger, prefix string, currencies []C) *Ledger[C] {
	return &Ledger[C]{
		store:      s,
		log:        log,
		prefix:     prefix,
		currencies: currencies,
		shared:     store.Shared(s),
		users:      make(map[string]map[C]decimal.Decimal),
	}
}

// NewWallet cria o ledger da carteira (balances:<userKey>)
func NewWallet(s store.Store, log *zap.Logger) *Ledger[currency.Wallet] {
	return New(s, log, WalletPrefix, currency.WalletCurrencies)
}

// NewTips cria o ledger do marketplace de tips (tips:balances:<userKey>)
func NewTips(s store.Store, log *zap.Logger) *Ledger[currency.TipCoin] {
	return New(s, log, TipsPrefix, currency.TipCoins)
}

// Key retorna a chave do snapshot de um usuário
func (l *Ledger[C]) Key(userKey string) string { return l.prefix + ":" + userKey }

// Credit soma amount ao saldo e retorna o novo saldo
func (l *Ledger[C]) Credit(ctx context.Context, userKey string, c C, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.mutate(ctx, userKey, c, amount, OpCredit)
}

// Debit subtrai amount do saldo; falha com ErrInsufficientFunds sem alterar nada
func (l *Ledger[C]) Debit(ctx context.Context, userKey string, c C, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.mutate(ctx, userKey, c, amount, OpDebit)
}

// Balance retorna o saldo atual; moeda nunca movimentada vale zero
func (l *Ledger[C]) Balance(ctx context.Context, userKey string, c C) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, string(c))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bals, err := l.load(ctx, userKey)
	if err != nil {
		return decimal.Zero, err
	}
	return bals[c], nil
}

// Balances retorna uma cópia do snapshot completo do usuário
func (l *Ledger[C]) Balances(ctx context.Context, userKey string) (Balances[C], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bals, err := l.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return l.snapshot(bals), nil
}

func (l *Ledger[C]) mutate(ctx context.Context, userKey string, c C, amount decimal.Decimal, op Op) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, string(c))
	}
	// o valor aplicado é o arredondado; abaixo de meio centavo vira zero e é rejeitado
	amount = money.Round2(amount)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	var cur, next decimal.Decimal
	var updated Balances[C]
	// leitura e gravação na mesma operação do store: em backend compartilhado
	// outra instância não consegue gastar o mesmo saldo
	err := store.Update(ctx, l.store, l.Key(userKey), func(raw []byte, found bool) ([]byte, error) {
		bals, err := l.decode(userKey, raw, found)
		if err != nil {
			return nil, err
		}
		cur = bals[c]
		switch op {
		case OpCredit:
			next = money.Round2(cur.Add(amount))
		case OpDebit:
			if cur.LessThan(amount) {
				return nil, fmt.Errorf("%w: need %s %s, have %s", ErrInsufficientFunds, amount, string(c), cur)
			}
			next = money.Round2(cur.Sub(amount))
		}
		bals[c] = next
		updated = l.snapshot(bals)
		return json.Marshal(updated)
	})
	if err != nil {
		l.mu.Unlock()
		if !errors.Is(err, ErrInsufficientFunds) {
			l.log.Error("ledger snapshot save failed", zap.String("user", userKey), zap.Error(err))
		}
		return cur, err
	}
	l.users[userKey] = l.snapshot(updated)
	l.mu.Unlock()

	l.log.Debug("ledger mutation",
		zap.String("op", string(op)),
		zap.String("user", userKey),
		zap.String("currency", string(c)),
		zap.String("amount", amount.String()),
		zap.String("balance", next.String()),
	)
	if l.OnMutation != nil {
		l.OnMutation(op, c)
	}
	if l.OnChange != nil {
		l.OnChange(userKey, updated)
	}
	return next, nil
}

// load deve ser chamado com mu travado. Em backend compartilhado o snapshot é
// sempre relido, já que outra instância pode ter gravado depois.
func (l *Ledger[C]) load(ctx context.Context, userKey string) (map[C]decimal.Decimal, error) {
	if bals, ok := l.users[userKey]; ok && !l.shared {
		return bals, nil
	}
	raw, found, err := l.store.Load(ctx, l.Key(userKey))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.Key(userKey), err)
	}
	bals, err := l.decode(userKey, raw, found)
	if err != nil {
		return nil, err
	}
	l.users[userKey] = bals
	return bals, nil
}

// decode normaliza o snapshot: toda moeda do escopo presente, desconhecidas e negativas descartadas
func (l *Ledger[C]) decode(userKey string, raw []byte, found bool) (map[C]decimal.Decimal, error) {
	bals := make(map[C]decimal.Decimal, len(l.currencies))
	for _, c := range l.currencies {
		bals[c] = decimal.Zero
	}
	if !found {
		return bals, nil
	}

	var snap map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.Key(userKey), err)
	}
	for k, v := range snap {
		c := C(k)
		if !c.Valid() {
			l.log.Warn("ignoring unknown currency in snapshot", zap.String("user", userKey), zap.String("currency", k))
			continue
		}
		if v.IsNegative() {
			l.log.Warn("negative balance in snapshot reset to zero", zap.String("user", userKey), zap.String("currency", k))
			continue
		}
		bals[c] = money.Round2(v)
	}
	return bals, nil
}

func (l *Ledger[C]) snapshot(bals map[C]decimal.Decimal) Balances[C] {
	out := make(Balances[C], len(l.currencies))
	for _, c := range l.currencies {
		out[c] = bals[c]
	}
	return out
}
