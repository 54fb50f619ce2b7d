package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrConflict indica que outro escritor alterou a chave em todas as tentativas
var ErrConflict = errors.New("concurrent update conflict")

const maxUpdateAttempts = 10

// Redis grava cada snapshot como string JSON, sem TTL
type Redis struct {
	R      *redis.Client
	Prefix string // namespace opcional, ex.: "betx:"
}

func NewRedis(r *redis.Client, prefix string) *Redis { return &Redis{R: r, Prefix: prefix} }

func (s *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.R.Get(ctx, s.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Redis) Save(ctx context.Context, key string, value []byte) error {
	return s.R.Set(ctx, s.Prefix+key, value, 0).Err()
}

// Update usa WATCH/MULTI: se a chave mudar entre o GET e o EXEC a transação
// falha e fn roda de novo sobre o valor novo
func (s *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := s.Prefix + key
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found, err = false, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.R.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.R.Ping(ctx).Err()
}
