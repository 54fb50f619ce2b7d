// Package tipster guarda as candidaturas de tipster e a revisão em dois estágios
// (candidatura e stake). O perfil só é listado com as duas partes verificadas.
package tipster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/pkg/contracts/events"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrTermsNotAccepted  = errors.New("terms not accepted")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("application not found")
	ErrInvalidFee        = errors.New("fees and stake must not be negative")
)

// Key é a chave da lista de candidaturas (mais recente primeiro)
const Key = "tipsterApplications"

type Status string

const (
	NotStarted Status = "not_started"
	Pending    Status = "pending"
	Verified   Status = "verified"
	Rejected   Status = "rejected"
)

// Valores iniciais do formulário, em BETX
var (
	DefaultBaseFee  = decimal.NewFromInt(10)
	DefaultBonusFee = decimal.NewFromInt(15)
	DefaultMinStake = decimal.NewFromInt(500)
)

// Draft é o formulário enviado pelo candidato; campos zerados de taxa usam os defaults
type Draft struct {
	Address  string          `json:"address"`
	Name     string          `json:"name"`
	Bio      string          `json:"bio"`
	Sports   string          `json:"sports"`
	Strategy string          `json:"strategy"`
	BaseFee  decimal.Decimal `json:"baseFee"`
	BonusFee decimal.Decimal `json:"bonusFee"`
	MinStake decimal.Decimal `json:"minStake"`
	Contacts string          `json:"contacts"`
	Agree    bool            `json:"agree"`
}

type Application struct {
	ID          string          `json:"id"`
	Address     string          `json:"address"`
	Name        string          `json:"name"`
	Bio         string          `json:"bio"`
	Sports      string          `json:"sports"`
	Strategy    string          `json:"strategy"`
	BaseFee     decimal.Decimal `json:"baseFee"`
	BonusFee    decimal.Decimal `json:"bonusFee"`
	MinStake    decimal.Decimal `json:"minStake"`
	Contacts    string          `json:"contacts"`
	Agree       bool            `json:"agree"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      Status          `json:"status"`
	StakeTxHash string          `json:"stakeTxHash,omitempty"`
	StakeStatus Status          `json:"stakeStatus"`
	ReviewNote  string          `json:"reviewNote,omitempty"`
	ReviewedAt  *time.Time      `json:"reviewedAt,omitempty"`
}

// Listable: candidatura e stake verificados
func (a Application) Listable() bool {
	return a.Status == Verified && a.StakeStatus == Verified
}

// Profile converte a candidatura aprovada em cartão do diretório; métricas começam zeradas
func (a Application) Profile() catalog.Profile {
	return catalog.Profile{
		ID:       a.ID,
		Name:     a.Name,
		Bio:      a.Bio,
		Staked:   a.MinStake,
		Recent:   []catalog.RecentResult{},
		Verified: true,
	}
}

// Publisher recebe cada mudança de candidatura (Kafka em produção)
type Publisher interface {
	PublishApplicationUpdated(ctx context.Context, e events.ApplicationUpdated) error
}

type Service struct {
	mu     sync.Mutex
	store  store.Store
	pub    Publisher
	log    *zap.Logger
	apps   []Application
	loaded bool
	now    func() time.Time

	OnReview func(stage string, approved bool) // métricas
	OnChange func(a Application)
}

func NewService(s store.Store, pub Publisher, log *zap.Logger) *Service {
	return &Service{store: s, pub: pub, log: log, now: time.Now}
}

// Submit valida o formulário e registra a candidatura em pending
func (s *Service) Submit(ctx context.Context, d Draft) (Application, error) {
	if err := validate(d); err != nil {
		return Application{}, err
	}

	a := Application{
		ID:          uuid.NewString(),
		Address:     strings.TrimSpace(d.Address),
		Name:        strings.TrimSpace(d.Name),
		Bio:         strings.TrimSpace(d.Bio),
		Sports:      strings.TrimSpace(d.Sports),
		Strategy:    strings.TrimSpace(d.Strategy),
		BaseFee:     orDefault(d.BaseFee, DefaultBaseFee),
		BonusFee:    orDefault(d.BonusFee, DefaultBonusFee),
		MinStake:    orDefault(d.MinStake, DefaultMinStake),
		Contacts:    strings.TrimSpace(d.Contacts),
		Agree:       true,
		CreatedAt:   s.now().UTC(),
		Status:      Pending,
		StakeStatus: NotStarted,
	}

	s.mu.Lock()
	if err := s.load(ctx); err != nil {
		s.mu.Unlock()
		return Application{}, err
	}
	next := append([]Application{a}, s.apps...)
	if err := store.SaveJSON(ctx, s.store, Key, next); err != nil {
		s.mu.Unlock()
		return Application{}, err
	}
	s.apps = next
	s.mu.Unlock()

	s.log.Info("tipster application submitted", zap.String("id", a.ID), zap.String("address", a.Address))
	s.emit(ctx, a)
	return a, nil
}

func validate(d Draft) error {
	required := []struct{ name, v string }{
		{"address", d.Address},
		{"name", d.Name},
		{"bio", d.Bio},
		{"sports", d.Sports},
		{"strategy", d.Strategy},
		{"contacts", d.Contacts},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	if !d.Agree {
		return ErrTermsNotAccepted
	}
	for _, fee := range []decimal.Decimal{d.BaseFee, d.BonusFee, d.MinStake} {
		if fee.IsNegative() {
			return fmt.Errorf("%w: %s", ErrInvalidFee, fee)
		}
	}
	return nil
}

func orDefault(v, def decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return def
	}
	return v
}

// SubmitStake registra o hash da transação de stake (not_started|rejected -> pending)
func (s *Service) SubmitStake(ctx context.Context, id, txHash string) (Application, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return Application{}, fmt.Errorf("%w: txHash", ErrMissingField)
	}
	return s.update(ctx, id, func(a *Application) error {
		if a.StakeStatus != NotStarted && a.StakeStatus != Rejected {
			return fmt.Errorf("%w: stake is %s", ErrInvalidTransition, a.StakeStatus)
		}
		a.StakeTxHash = txHash
		a.StakeStatus = Pending
		return nil
	})
}

// Review decide a candidatura (pending -> verified|rejected)
func (s *Service) Review(ctx context.Context, id string, approve bool, note string) (Application, error) {
	a, err := s.update(ctx, id, func(a *Application) error {
		if a.Status != Pending {
			return fmt.Errorf("%w: application is %s", ErrInvalidTransition, a.Status)
		}
		a.Status = decide(approve)
		a.ReviewNote = strings.TrimSpace(note)
		now := s.now().UTC()
		a.ReviewedAt = &now
		return nil
	})
	if err == nil && s.OnReview != nil {
		s.OnReview("application", approve)
	}
	return a, err
}

// ReviewStake decide o stake (pending -> verified|rejected)
func (s *Service) ReviewStake(ctx context.Context, id string, approve bool) (Application, error) {
	a, err := s.update(ctx, id, func(a *Application) error {
		if a.StakeStatus != Pending {
			return fmt.Errorf("%w: stake is %s", ErrInvalidTransition, a.StakeStatus)
		}
		a.StakeStatus = decide(approve)
		return nil
	})
	if err == nil && s.OnReview != nil {
		s.OnReview("stake", approve)
	}
	return a, err
}

func decide(approve bool) Status {
	if approve {
		return Verified
	}
	return Rejected
}

func (s *Service) update(ctx context.Context, id string, fn func(a *Application) error) (Application, error) {
	s.mu.Lock()
	if err := s.load(ctx); err != nil {
		s.mu.Unlock()
		return Application{}, err
	}
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return Application{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	a := s.apps[i]
	if err := fn(&a); err != nil {
		s.mu.Unlock()
		return Application{}, err
	}
	next := append([]Application(nil), s.apps...)
	next[i] = a
	if err := store.SaveJSON(ctx, s.store, Key, next); err != nil {
		s.mu.Unlock()
		return Application{}, err
	}
	s.apps = next
	s.mu.Unlock()

	s.log.Info("tipster application updated",
		zap.String("id", a.ID),
		zap.String("status", string(a.Status)),
		zap.String("stake_status", string(a.StakeStatus)),
	)
	s.emit(ctx, a)
	return a, nil
}

// List retorna todas as candidaturas, mais recente primeiro
func (s *Service) List(ctx context.Context) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return append([]Application{}, s.apps...), nil
}

func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return Application{}, err
	}
	i := s.index(id)
	if i < 0 {
		return Application{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.apps[i], nil
}

// Listable retorna os perfis aptos a aparecer no marketplace
func (s *Service) Listable(ctx context.Context) ([]Application, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []Application{}
	for _, a := range all {
		if a.Listable() {
			out = append(out, a)
		}
	}
	return out, nil
}

// load deve ser chamado com mu travado
func (s *Service) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	var apps []Application
	if _, err := store.LoadJSON(ctx, s.store, Key, &apps); err != nil {
		return err
	}
	for i := range apps {
		// registros antigos (sem revisão de stake) entram como not_started
		if apps[i].StakeStatus == "" {
			apps[i].StakeStatus = NotStarted
		}
	}
	s.apps = apps
	s.loaded = true
	return nil
}

func (s *Service) index(id string) int {
	for i, a := range s.apps {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) emit(ctx context.Context, a Application) {
	if s.OnChange != nil {
		s.OnChange(a)
	}
	if s.pub == nil {
		return
	}
	err := s.pub.PublishApplicationUpdated(ctx, events.ApplicationUpdated{
		ApplicationID: a.ID,
		Address:       a.Address,
		Status:        string(a.Status),
		StakeStatus:   string(a.StakeStatus),
		Listable:      a.Listable(),
	})
	if err != nil {
		s.log.Warn("publish tipster_application_updated failed", zap.String("id", a.ID), zap.Error(err))
	}
}
