// Package store é a porta de persistência dos snapshots (chave -> JSON).
// Ledger, escrow e candidaturas de tipster dependem apenas desta interface.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store carrega e grava valores brutos por chave.
// Load retorna found=false quando a chave nunca foi gravada.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// UpdateFunc recebe o valor atual da chave e devolve o novo; erro aborta sem gravar
type UpdateFunc func(cur []byte, found bool) ([]byte, error)

// Updater é implementado pelos backends compartilhados entre processos (Redis, Postgres):
// Update lê, aplica fn e grava de forma atômica em relação a outros escritores da chave.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Shared indica se o backend garante read-modify-write atômico entre processos
func Shared(s Store) bool {
	_, ok := s.(Updater)
	return ok
}

// Update usa o Updater do backend quando existe; sem ele faz Load + Save,
// e a exclusão fica por conta do chamador (mutex do processo).
func Update(ctx context.Context, s Store, key string, fn UpdateFunc) error {
	if u, ok := s.(Updater); ok {
		if err := u.Update(ctx, key, fn); err != nil {
			return fmt.Errorf("update %s: %w", key, err)
		}
		return nil
	}
	cur, found, err := s.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	next, err := fn(cur, found)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, key, next); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadJSON decodifica o valor da chave em dst; retorna false se a chave não existe
func LoadJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	b, ok, err := s.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON serializa v e grava na chave
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Save(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Memory guarda os snapshots em memória (testes e modo demo sem dependências)
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory { return &Memory{data: make(map[string][]byte)} }

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	b := make([]byte, len(value))
	copy(b, value)
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Keys lista as chaves gravadas (usado nos testes)
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}
