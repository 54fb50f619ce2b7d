package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PubSubChannel define o canal Redis Pub/Sub usado para repassar pushes entre instâncias
const PubSubChannel = "betx_ws_broadcast"

// RedisRelay publica as notificações no Redis; cada instância repassa ao seu Hub
// via StartRedisSubscriber
type RedisRelay struct {
	R   *redis.Client
	Log *zap.Logger
}

func (r *RedisRelay) Notify(msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		r.Log.Warn("relay marshal failed", zap.Error(err))
		return
	}
	if err := r.R.Publish(context.Background(), PubSubChannel, b).Err(); err != nil {
		r.Log.Warn("relay publish failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// e repassa as mensagens para as conexões do Hub local
func StartRedisSubscriber(ctx context.Context, r *redis.Client, hub *Hub) {
	sub := r.Subscribe(ctx, PubSubChannel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				var m Message
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					hub.log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(m)
			}
		}
	}()
}
