package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type Message = kafka.Message

// MessageReader é o lado de consumo usado pelos workers (kafka.Reader em produção)
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewReader cria um consumer group lendo de todos os tópicos informados
func NewReader(brokers, groupID string, topics ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     splitBrokers(brokers),
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1e3,
		MaxBytes:    10e6,
	})
}
