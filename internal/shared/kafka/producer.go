package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/betx-platform/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado pelo Producer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Topics mapeia cada evento de domínio para o seu tópico
type Topics struct {
	BetPlaced                 string
	TipPurchaseUpdated        string
	TipsterApplicationUpdated string
}

func (t Topics) All() []string {
	return []string{t.BetPlaced, t.TipPurchaseUpdated, t.TipsterApplicationUpdated}
}

// Producer publica os eventos de domínio, um writer por tópico.
// A chave da mensagem é o userKey (ou endereço) para manter a ordem por usuário.
type Producer struct {
	writers map[string]MessageWriter
	topics  Topics
}

func NewProducer(brokers string, t Topics) *Producer {
	return NewProducerWithWriters(t, map[string]MessageWriter{
		t.BetPlaced:                 NewWriter(brokers, t.BetPlaced),
		t.TipPurchaseUpdated:        NewWriter(brokers, t.TipPurchaseUpdated),
		t.TipsterApplicationUpdated: NewWriter(brokers, t.TipsterApplicationUpdated),
	})
}

func NewProducerWithWriters(t Topics, writers map[string]MessageWriter) *Producer {
	return &Producer{writers: writers, topics: t}
}

func (p *Producer) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return p.publish(ctx, p.topics.BetPlaced, e.UserKey, e)
}

func (p *Producer) PublishPurchaseUpdated(ctx context.Context, e events.PurchaseUpdated) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return p.publish(ctx, p.topics.TipPurchaseUpdated, e.UserKey, e)
}

func (p *Producer) PublishApplicationUpdated(ctx context.Context, e events.ApplicationUpdated) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return p.publish(ctx, p.topics.TipsterApplicationUpdated, e.Address, e)
}

func (p *Producer) publish(ctx context.Context, topic, key string, v any) error {
	w, ok := p.writers[topic]
	if !ok {
		return fmt.Errorf("no writer for topic %q", topic)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	if err := WriteJSON(ctx, w, key, b); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	var errs []error
	for _, w := range p.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

// Nop descarta os eventos; usado quando KAFKA_BROKERS está vazio
type Nop struct{}

func (Nop) PublishBetPlaced(context.Context, events.BetPlaced) error { return nil }
func (Nop) PublishPurchaseUpdated(context.Context, events.PurchaseUpdated) error { return nil }
func (Nop) PublishApplicationUpdated(context.Context, events.ApplicationUpdated) error { return nil }
func (Nop) Close() error { return nil }
