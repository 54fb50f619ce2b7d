package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/shared/kafka"
	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/pkg/contracts/events"
)

var topics = kafka.Topics{BetPlaced: "bets", TipPurchaseUpdated: "purchases", TipsterApplicationUpdated: "apps"}

// fakeReader entrega as mensagens enfileiradas e depois bloqueia até o cancelamento
type fakeReader struct {
	msgs chan kafka.Message
	errs chan error
}

func newFakeReader() *fakeReader {
	return &fakeReader{msgs: make(chan kafka.Message, 16), errs: make(chan error, 4)}
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case err := <-f.errs:
		return kafka.Message{}, err
	case m := <-f.msgs:
		return m, nil
	}
}

func (f *fakeReader) Close() error { return nil }

type results struct {
	mu  sync.Mutex
	got []string
}

func (r *results) add(topic, result string) {
	r.mu.Lock()
	r.got = append(r.got, topic+"/"+result)
	r.mu.Unlock()
}

func (r *results) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func message(t *testing.T, topic string, v any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: b, Time: time.UnixMilli(1700000000000)}
}

func newProcessor(r kafka.MessageReader) (*Processor, *results) {
	res := &results{}
	return &Processor{
		Log:      zap.NewNop(),
		Reader:   r,
		Feed:     NewFeed(store.NewMemory()),
		Topics:   topics,
		OnResult: res.add,
		Backoff:  time.Millisecond,
	}, res
}

func TestHandle_AllTopics(t *testing.T) {
	ctx := context.Background()
	p, res := newProcessor(newFakeReader())

	require.NoError(t, p.Handle(ctx, message(t, "bets", events.BetPlaced{
		Ticket: "A1B2C3", UserKey: "alice", Mode: "parlay", Currency: "USDT",
		Stake: "50", Potential: "1372.68", Picks: make([]events.PickEntry, 4), TsUnixMs: 10,
	})))
	require.NoError(t, p.Handle(ctx, message(t, "purchases", events.PurchaseUpdated{
		PurchaseID: "p1", UserKey: "alice", TipID: "t1", Status: "refunded_partial",
		Coin: "BETX", Price: "30", Refunded: "7.5", TsUnixMs: 20,
	})))
	require.NoError(t, p.Handle(ctx, message(t, "apps", events.ApplicationUpdated{
		ApplicationID: "app1", Address: "alice", Status: "verified", StakeStatus: "pending",
	})))

	feed, err := p.Feed.Recent(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// mais recente primeiro
	assert.Equal(t, "app1", feed[0].Ref)
	assert.Equal(t, "stake pending, listable false", feed[0].Detail)
	assert.Equal(t, int64(1700000000000), feed[0].TsUnixMs, "falls back to message time")

	assert.Equal(t, "refunded_partial", feed[1].Status)
	assert.Equal(t, "tip t1 for 30 BETX, refunded 7.5 BETX", feed[1].Detail)

	assert.Equal(t, "A1B2C3", feed[2].Ref)
	assert.Equal(t, "parlay 50 USDT, potential 1372.68, 4 picks", feed[2].Detail)
	assert.Equal(t, int64(10), feed[2].TsUnixMs)

	assert.Equal(t, []string{"bets/ok", "purchases/ok", "apps/ok"}, res.list())
}

func TestHandle_InvalidMessages(t *testing.T) {
	ctx := context.Background()
	p, res := newProcessor(newFakeReader())

	err := p.Handle(ctx, kafka.Message{Topic: "bets", Value: []byte("{")})
	assert.Error(t, err)

	err = p.Handle(ctx, kafka.Message{Topic: "odds", Value: []byte("{}")})
	assert.ErrorIs(t, err, ErrUnknownTopic)

	assert.Equal(t, []string{"bets/" + ResultDecode, "odds/" + ResultUnknownTopic}, res.list())
}

type failingStore struct{ *store.Memory }

func (failingStore) Save(context.Context, string, []byte) error { return errors.New("disk full") }

func TestHandle_StoreFailure(t *testing.T) {
	p, res := newProcessor(newFakeReader())
	p.Feed = NewFeed(failingStore{store.NewMemory()})

	err := p.Handle(context.Background(), message(t, "apps", events.ApplicationUpdated{Address: "bob"}))
	assert.Error(t, err)
	assert.Equal(t, []string{"apps/" + ResultStore}, res.list())
}

func TestFeed_BoundedNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := NewFeed(store.NewMemory())
	f.Size = 3

	for _, ref := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, f.Append(ctx, "alice", Entry{Ref: ref}))
	}
	feed, err := f.Recent(ctx, "alice")
	require.NoError(t, err)
	refs := make([]string, len(feed))
	for i, e := range feed {
		refs[i] = e.Ref
	}
	assert.Equal(t, []string{"5", "4", "3"}, refs)

	empty, err := f.Recent(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestRun_ConsumesUntilCancelled(t *testing.T) {
	r := newFakeReader()
	p, res := newProcessor(r)

	r.errs <- errors.New("broker down")
	r.msgs <- message(t, "apps", events.ApplicationUpdated{ApplicationID: "app1", Address: "carol"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool {
		feed, _ := p.Feed.Recent(context.Background(), "carol")
		return len(feed) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("processor did not stop")
	}
	assert.Contains(t, res.list(), "/"+ResultRead)
}
