// Package escrow implementa o desbloqueio de tips por pagamento simulado:
// awaiting_payment -> confirming -> released -> refunded_partial.
//
// A confirmação é uma transição agendada e cancelável. No disparo ela só é
// aplicada se a compra atual da tip ainda for a mesma (id) e estiver em confirming,
// de modo que um timer antigo nunca altera uma compra mais nova.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/pkg/contracts/events"
	"github.com/radieske/betx-platform/pkg/currency"
	"github.com/radieske/betx-platform/pkg/money"
)

var (
	ErrMissingTxRef         = errors.New("transaction reference required")
	ErrMissingTipID         = errors.New("tip id required")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrUnknownCoin          = currency.ErrUnknown
	ErrInvalidRefundPercent = errors.New("invalid refund")
	ErrPurchaseNotFound     = errors.New("purchase not found")
)

type Status string

const (
	AwaitingPayment Status = "awaiting_payment"
	Confirming      Status = "confirming"
	Released        Status = "released"
	RefundedPartial Status = "refunded_partial"
)

// Limites do reembolso parcial, em porcentagem
const (
	MinRefundPercent = 10
	MaxRefundPercent = 90
)

const DefaultConfirmationDelay = 2500 * time.Millisecond

// Chaves persistidas
const (
	PurchasesPrefix = "tips:purchases"
	UnlockedPrefix  = "tips:unlocked"
	SalesKey        = "tips:sales"
)

type Purchase struct {
	ID            string           `json:"id"`
	TipID         string           `json:"tipId"`
	Coin          currency.TipCoin `json:"coin"`
	Price         decimal.Decimal  `json:"price"`
	TxRef         string           `json:"txHash,omitempty"`
	Status        Status           `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
	ReleasedAt    *time.Time       `json:"releasedAt,omitempty"`
	RefundPercent int              `json:"refundPercent,omitempty"`
	Refunded      *decimal.Decimal `json:"refundedAmount,omitempty"`
}

// Publisher recebe cada transição (Kafka em produção)
type Publisher interface {
	PublishPurchaseUpdated(ctx context.Context, e events.PurchaseUpdated) error
}

type Config struct {
	ConfirmationDelay time.Duration // default 2.5s
	Scheduler         Scheduler     // default RealScheduler
}

type userState struct {
	purchases map[string]Purchase // tipId -> compra atual
	unlocked  []string
}

type pendingTimer struct {
	purchaseID string
	t          Timer
}

type Engine struct {
	mu     sync.Mutex
	emitMu sync.Mutex // transições saem na ordem em que foram aplicadas; ordem de lock: mu -> emitMu
	store  store.Store
	pub    Publisher
	log    *zap.Logger
	sched  Scheduler
	delay  time.Duration
	users  map[string]*userState
	sales  map[string]int
	timers map[string]pendingTimer // userKey + "\x00" + tipId
	closed bool

	OnTransition func(s Status)                  // métricas
	OnChange     func(userKey string, p Purchase) // push para a UI
}

func New(s store.Store, pub Publisher, log *zap.Logger, cfg Config) *Engine {
	if cfg.ConfirmationDelay <= 0 {
		cfg.ConfirmationDelay = DefaultConfirmationDelay
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	return &Engine{
		store:  s,
		pub:    pub,
		log:    log,
		sched:  cfg.Scheduler,
		delay:  cfg.ConfirmationDelay,
		users:  make(map[string]*userState),
		timers: make(map[string]pendingTimer),
	}
}

func purchasesKey(userKey string) string { return PurchasesPrefix + ":" + userKey }
func unlockedKey(userKey string) string { return UnlockedPrefix + ":" + userKey }
func timerKey(userKey, tipID string) string { return userKey + "\x00" + tipID }

// Initiate registra o pagamento (txRef simulado) e agenda a confirmação.
// Uma compra anterior da mesma tip é substituída e o timer dela cancelado.
func (e *Engine) Initiate(ctx context.Context, userKey, tipID string, coin currency.TipCoin, price decimal.Decimal, txRef string) (Purchase, error) {
	txRef = strings.TrimSpace(txRef)
	switch {
	case tipID == "":
		return Purchase{}, ErrMissingTipID
	case txRef == "":
		return Purchase{}, ErrMissingTxRef
	case !price.IsPositive():
		return Purchase{}, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	case !coin.Valid():
		return Purchase{}, fmt.Errorf("%w: %q", ErrUnknownCoin, string(coin))
	}

	e.mu.Lock()
	us, err := e.loadUser(ctx, userKey)
	if err != nil {
		e.mu.Unlock()
		return Purchase{}, err
	}

	p := Purchase{
		ID:        uuid.NewString(),
		TipID:     tipID,
		Coin:      coin,
		Price:     money.Round2(price),
		TxRef:     txRef,
		Status:    Confirming,
		CreatedAt: e.sched.Now().UTC(),
	}
	prev, hadPrev := us.purchases[tipID]
	if err := e.savePurchases(ctx, userKey, us, p); err != nil {
		e.mu.Unlock()
		return Purchase{}, err
	}
	us.purchases[tipID] = p
	e.schedule(userKey, tipID, p.ID, e.delay)
	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	if hadPrev {
		e.log.Info("purchase superseded",
			zap.String("user", userKey),
			zap.String("tip", tipID),
			zap.String("previous", prev.ID),
			zap.String("previous_status", string(prev.Status)),
		)
	}
	e.emit(ctx, userKey, p)
	return p, nil
}

// Refund registra o reembolso parcial de uma compra liberada.
// A tip continua desbloqueada e nenhum saldo é movimentado aqui.
func (e *Engine) Refund(ctx context.Context, userKey, tipID string, percent int) (Purchase, error) {
	if percent < MinRefundPercent || percent > MaxRefundPercent {
		return Purchase{}, fmt.Errorf("%w: percent %d outside [%d,%d]", ErrInvalidRefundPercent, percent, MinRefundPercent, MaxRefundPercent)
	}

	e.mu.Lock()
	us, err := e.loadUser(ctx, userKey)
	if err != nil {
		e.mu.Unlock()
		return Purchase{}, err
	}
	p, ok := us.purchases[tipID]
	if !ok {
		e.mu.Unlock()
		return Purchase{}, fmt.Errorf("%w: tip %s", ErrPurchaseNotFound, tipID)
	}
	if p.Status != Released {
		e.mu.Unlock()
		return Purchase{}, fmt.Errorf("%w: purchase is %s", ErrInvalidRefundPercent, p.Status)
	}

	refunded := money.Percent(p.Price, percent)
	p.Status = RefundedPartial
	p.RefundPercent = percent
	p.Refunded = &refunded
	if err := e.savePurchases(ctx, userKey, us, p); err != nil {
		e.mu.Unlock()
		return Purchase{}, err
	}
	us.purchases[tipID] = p
	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	e.emit(ctx, userKey, p)
	return p, nil
}

// Purchase retorna a compra atual da tip para o usuário
func (e *Engine) Purchase(ctx context.Context, userKey, tipID string) (Purchase, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	us, err := e.loadUser(ctx, userKey)
	if err != nil {
		return Purchase{}, false, err
	}
	p, ok := us.purchases[tipID]
	return p, ok, nil
}

// Purchases retorna uma cópia de todas as compras do usuário
func (e *Engine) Purchases(ctx context.Context, userKey string) (map[string]Purchase, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	us, err := e.loadUser(ctx, userKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Purchase, len(us.purchases))
	for k, v := range us.purchases {
		out[k] = v
	}
	return out, nil
}

// Sales é o contador global de vendas liberadas da tip
func (e *Engine) Sales(ctx context.Context, tipID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.loadSales(ctx); err != nil {
		return 0, err
	}
	return e.sales[tipID], nil
}

func (e *Engine) IsUnlocked(ctx context.Context, userKey, tipID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	us, err := e.loadUser(ctx, userKey)
	if err != nil {
		return false, err
	}
	return slices.Contains(us.unlocked, tipID), nil
}

// Close cancela todas as confirmações pendentes
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for k, pt := range e.timers {
		pt.t.Stop()
		delete(e.timers, k)
	}
}

// schedule deve ser chamado com mu travado
func (e *Engine) schedule(userKey, tipID, purchaseID string, d time.Duration) {
	if e.closed {
		return
	}
	k := timerKey(userKey, tipID)
	if old, ok := e.timers[k]; ok {
		old.t.Stop()
	}
	if d < 0 {
		d = 0
	}
	t := e.sched.AfterFunc(d, func() { e.confirm(userKey, tipID, purchaseID) })
	e.timers[k] = pendingTimer{purchaseID: purchaseID, t: t}
}

func (e *Engine) confirm(userKey, tipID, purchaseID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.mu.Lock()
	k := timerKey(userKey, tipID)
	if pt, ok := e.timers[k]; ok && pt.purchaseID == purchaseID {
		delete(e.timers, k)
	}
	if e.closed {
		e.mu.Unlock()
		return
	}

	us, ok := e.users[userKey]
	if !ok {
		e.mu.Unlock()
		return
	}
	p, ok := us.purchases[tipID]
	if !ok || p.ID != purchaseID || p.Status != Confirming {
		e.mu.Unlock()
		e.log.Debug("stale confirmation ignored", zap.String("user", userKey), zap.String("tip", tipID), zap.String("purchase", purchaseID))
		return
	}
	if err := e.loadSales(ctx); err != nil {
		e.schedule(userKey, tipID, purchaseID, e.delay)
		e.mu.Unlock()
		e.log.Error("load sales failed, confirmation rescheduled", zap.String("tip", tipID), zap.Error(err))
		return
	}

	now := e.sched.Now().UTC()
	p.Status = Released
	p.ReleasedAt = &now
	if err := e.savePurchases(ctx, userKey, us, p); err != nil {
		e.schedule(userKey, tipID, purchaseID, e.delay)
		e.mu.Unlock()
		e.log.Error("release save failed, confirmation rescheduled", zap.String("tip", tipID), zap.Error(err))
		return
	}
	us.purchases[tipID] = p
	if !slices.Contains(us.unlocked, tipID) {
		us.unlocked = append(us.unlocked, tipID)
	}
	e.sales[tipID]++

	// a compra liberada já foi gravada. Se a lista de desbloqueadas falhar ela é
	// reconstruída das compras no próximo load; o contador de vendas fica só em memória
	if err := store.SaveJSON(ctx, e.store, unlockedKey(userKey), us.unlocked); err != nil {
		e.log.Error("unlocked save failed", zap.String("user", userKey), zap.Error(err))
	}
	if err := store.SaveJSON(ctx, e.store, SalesKey, e.sales); err != nil {
		e.log.Error("sales save failed", zap.String("tip", tipID), zap.Error(err))
	}
	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	e.emit(ctx, userKey, p)
}

// savePurchases grava o mapa do usuário com p aplicado, sem alterar a memória
func (e *Engine) savePurchases(ctx context.Context, userKey string, us *userState, p Purchase) error {
	next := make(map[string]Purchase, len(us.purchases)+1)
	for k, v := range us.purchases {
		next[k] = v
	}
	next[p.TipID] = p
	if err := store.SaveJSON(ctx, e.store, purchasesKey(userKey), next); err != nil {
		e.log.Error("purchases save failed", zap.String("user", userKey), zap.Error(err))
		return err
	}
	return nil
}

// loadUser deve ser chamado com mu travado. Compras em confirming voltam a ser
// agendadas com o atraso restante e toda compra liberada (ou reembolsada) conta
// como desbloqueada, mesmo que a lista gravada tenha ficado para trás.
func (e *Engine) loadUser(ctx context.Context, userKey string) (*userState, error) {
	if us, ok := e.users[userKey]; ok {
		return us, nil
	}

	us := &userState{purchases: make(map[string]Purchase)}
	if _, err := store.LoadJSON(ctx, e.store, purchasesKey(userKey), &us.purchases); err != nil {
		return nil, err
	}
	if us.purchases == nil {
		us.purchases = make(map[string]Purchase)
	}
	if _, err := store.LoadJSON(ctx, e.store, unlockedKey(userKey), &us.unlocked); err != nil {
		return nil, err
	}
	var derived []string
	for tipID, p := range us.purchases {
		if (p.Status == Released || p.Status == RefundedPartial) && !slices.Contains(us.unlocked, tipID) {
			derived = append(derived, tipID)
		}
	}
	if len(derived) > 0 {
		slices.Sort(derived)
		us.unlocked = append(us.unlocked, derived...)
		e.log.Warn("unlocked list rebuilt from purchases", zap.String("user", userKey), zap.Strings("tips", derived))
	}
	e.users[userKey] = us

	now := e.sched.Now()
	for tipID, p := range us.purchases {
		if p.Status == Confirming {
			remaining := p.CreatedAt.Add(e.delay).Sub(now)
			e.schedule(userKey, tipID, p.ID, remaining)
			e.log.Info("confirmation restored", zap.String("user", userKey), zap.String("tip", tipID), zap.Duration("remaining", max(remaining, 0)))
		}
	}
	return us, nil
}

// loadSales deve ser chamado com mu travado
func (e *Engine) loadSales(ctx context.Context) error {
	if e.sales != nil {
		return nil
	}
	sales := make(map[string]int)
	if _, err := store.LoadJSON(ctx, e.store, SalesKey, &sales); err != nil {
		return err
	}
	if sales == nil {
		sales = make(map[string]int)
	}
	e.sales = sales
	return nil
}

func (e *Engine) emit(ctx context.Context, userKey string, p Purchase) {
	e.log.Info("purchase transition",
		zap.String("user", userKey),
		zap.String("tip", p.TipID),
		zap.String("purchase", p.ID),
		zap.String("status", string(p.Status)),
	)
	if e.OnTransition != nil {
		e.OnTransition(p.Status)
	}
	if e.OnChange != nil {
		e.OnChange(userKey, p)
	}
	if e.pub == nil {
		return
	}
	ev := events.PurchaseUpdated{
		PurchaseID: p.ID,
		UserKey:    userKey,
		TipID:      p.TipID,
		Status:     string(p.Status),
		Coin:       p.Coin.String(),
		Price:      p.Price.StringFixed(2),
	}
	if p.Refunded != nil {
		ev.Refunded = p.Refunded.StringFixed(2)
	}
	if err := e.pub.PublishPurchaseUpdated(ctx, ev); err != nil {
		e.log.Warn("publish tip_purchase_updated failed", zap.String("purchase", p.ID), zap.Error(err))
	}
}
