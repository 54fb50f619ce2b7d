package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/shared/kafka"
	"github.com/radieske/betx-platform/pkg/contracts/events"
)

var ErrUnknownTopic = errors.New("unknown topic")

// Resultados reportados em OnResult (label de métrica)
const (
	ResultOK           = "ok"
	ResultRead         = "read"
	ResultDecode       = "decode"
	ResultStore        = "store"
	ResultUnknownTopic = "unknown_topic"
)

// Processor consome os tópicos de domínio e alimenta o Feed.
// Mensagens inválidas são descartadas com log; o loop só para com o contexto.
type Processor struct {
	Log    *zap.Logger
	Reader kafka.MessageReader
	Feed   *Feed
	Topics kafka.Topics

	OnResult func(topic, result string) // métricas

	// espera após falha de leitura
	Backoff time.Duration
}

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.report("", ResultRead)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		if err := p.Handle(ctx, m); err != nil {
			p.Log.Warn("audit event dropped",
				zap.String("topic", m.Topic),
				zap.String("key", string(m.Key)),
				zap.Error(err),
			)
		}
	}
}

// Handle decodifica uma mensagem e grava a entrada no feed do usuário
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	userKey, e, err := p.decode(m)
	if err != nil {
		if errors.Is(err, ErrUnknownTopic) {
			p.report(m.Topic, ResultUnknownTopic)
		} else {
			p.report(m.Topic, ResultDecode)
		}
		return err
	}
	if e.TsUnixMs == 0 {
		e.TsUnixMs = m.Time.UnixMilli()
	}
	if err := p.Feed.Append(ctx, userKey, e); err != nil {
		p.report(m.Topic, ResultStore)
		return err
	}
	p.report(m.Topic, ResultOK)
	return nil
}

func (p *Processor) decode(m kafka.Message) (string, Entry, error) {
	switch m.Topic {
	case p.Topics.BetPlaced:
		var ev events.BetPlaced
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			return "", Entry{}, fmt.Errorf("decode bet_placed: %w", err)
		}
		return ev.UserKey, Entry{
			Topic:    m.Topic,
			Ref:      ev.Ticket,
			Status:   "placed",
			Detail:   fmt.Sprintf("%s %s %s, potential %s, %d picks", ev.Mode, ev.Stake, ev.Currency, ev.Potential, len(ev.Picks)),
			TsUnixMs: ev.TsUnixMs,
		}, nil

	case p.Topics.TipPurchaseUpdated:
		var ev events.PurchaseUpdated
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			return "", Entry{}, fmt.Errorf("decode tip_purchase_updated: %w", err)
		}
		detail := fmt.Sprintf("tip %s for %s %s", ev.TipID, ev.Price, ev.Coin)
		if ev.Refunded != "" {
			detail += fmt.Sprintf(", refunded %s %s", ev.Refunded, ev.Coin)
		}
		return ev.UserKey, Entry{
			Topic:    m.Topic,
			Ref:      ev.PurchaseID,
			Status:   ev.Status,
			Detail:   detail,
			TsUnixMs: ev.TsUnixMs,
		}, nil

	case p.Topics.TipsterApplicationUpdated:
		var ev events.ApplicationUpdated
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			return "", Entry{}, fmt.Errorf("decode tipster_application_updated: %w", err)
		}
		return ev.Address, Entry{
			Topic:    m.Topic,
			Ref:      ev.ApplicationID,
			Status:   ev.Status,
			Detail:   fmt.Sprintf("stake %s, listable %t", ev.StakeStatus, ev.Listable),
			TsUnixMs: ev.TsUnixMs,
		}, nil
	}
	return "", Entry{}, fmt.Errorf("%w: %q", ErrUnknownTopic, m.Topic)
}

func (p *Processor) report(topic, result string) {
	if p.OnResult != nil {
		p.OnResult(topic, result)
	}
}
