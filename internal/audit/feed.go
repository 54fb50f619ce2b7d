// Package audit consome os eventos de domínio publicados pelo betx-api e mantém,
// por usuário, um feed curto de atividade (apostas, compras de tips, candidaturas).
package audit

import (
	"context"
	"sync"

	"github.com/radieske/betx-platform/internal/store"
)

const (
	KeyPrefix       = "audit"
	DefaultFeedSize = 50
)

// Entry é uma linha do feed; Ref é o ticket, a compra ou a candidatura
type Entry struct {
	Topic    string `json:"topic"`
	Ref      string `json:"ref"`
	Status   string `json:"status"`
	Detail   string `json:"detail"`
	TsUnixMs int64  `json:"tsUnixMs"`
}

// Feed guarda as entradas mais recentes primeiro, limitado a Size
type Feed struct {
	mu    sync.Mutex
	store store.Store
	Size  int
}

func NewFeed(s store.Store) *Feed {
	return &Feed{store: s, Size: DefaultFeedSize}
}

func (f *Feed) Key(userKey string) string { return KeyPrefix + ":" + userKey }

// Append insere no topo e descarta o excedente
func (f *Feed) Append(ctx context.Context, userKey string, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []Entry
	if _, err := store.LoadJSON(ctx, f.store, f.Key(userKey), &entries); err != nil {
		return err
	}
	entries = append([]Entry{e}, entries...)
	if f.Size > 0 && len(entries) > f.Size {
		entries = entries[:f.Size]
	}
	return store.SaveJSON(ctx, f.store, f.Key(userKey), entries)
}

// Recent retorna o feed do usuário; vazio quando nada foi registrado
func (f *Feed) Recent(ctx context.Context, userKey string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := []Entry{}
	if _, err := store.LoadJSON(ctx, f.store, f.Key(userKey), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
