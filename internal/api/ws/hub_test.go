package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(func(*http.Request) bool { return true }, zap.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, srv
}

func readMessage(t *testing.T, c *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, c.ReadJSON(&m))
	return m
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub, srv := newServer(t)

	alice := dial(t, srv, "?userKey=alice")
	bob := dial(t, srv, "")
	require.NoError(t, bob.WriteJSON(ClientMsg{Type: "subscribe", UserKey: "bob"}))

	require.Eventually(t, func() bool {
		return hub.Subscribers("alice") == 1 && hub.Subscribers("bob") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Notify(Message{Type: TypeBalances, UserKey: "bob", Payload: map[string]string{"USDT": "10"}})
	m := readMessage(t, bob)
	assert.Equal(t, TypeBalances, m.Type)
	assert.Equal(t, "bob", m.UserKey)
	assert.Equal(t, map[string]any{"USDT": "10"}, m.Payload)

	hub.Broadcast(Message{Type: TypePurchase, UserKey: "alice", Payload: "p1"})
	m = readMessage(t, alice)
	assert.Equal(t, TypePurchase, m.Type)
	assert.Equal(t, "p1", m.Payload)
}

func TestHub_UnsubscribeAndPing(t *testing.T) {
	hub, srv := newServer(t)
	c := dial(t, srv, "?userKey=alice")
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.WriteJSON(ClientMsg{Type: "ping"}))
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var pong map[string]string
	require.NoError(t, c.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])

	require.NoError(t, c.WriteJSON(ClientMsg{Type: "unsubscribe", UserKey: "alice"}))
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_DisconnectCleansUp(t *testing.T) {
	hub, srv := newServer(t)
	c := dial(t, srv, "?userKey=alice")
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 0 }, time.Second, 10*time.Millisecond)

	// sem inscritos: no-op
	hub.Broadcast(Message{Type: TypeBalances, UserKey: "alice"})
}

func TestHub_SlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub, srv := newServer(t)
	dial(t, srv, "?userKey=alice") // nunca lê
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 1 }, time.Second, 10*time.Millisecond)

	payload := strings.Repeat("x", 64<<10)
	began := time.Now()
	for i := 0; i < 500; i++ {
		hub.Broadcast(Message{Type: TypeBalances, UserKey: "alice", Payload: payload})
	}
	assert.Less(t, time.Since(began), 2*time.Second, "broadcast must not wait on a stalled socket")

	// cliente lento é derrubado e sai das assinaturas
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestRedisRelay(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	hub, srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartRedisSubscriber(ctx, rdb, hub)

	c := dial(t, srv, "?userKey=alice")
	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(mr.PubSubChannels("")) == 1 }, time.Second, 10*time.Millisecond)

	relay := &RedisRelay{R: rdb, Log: zap.NewNop()}
	relay.Notify(Message{Type: TypeApplication, UserKey: "alice", Payload: "a1"})

	m := readMessage(t, c)
	assert.Equal(t, TypeApplication, m.Type)
	assert.Equal(t, "a1", m.Payload)
}
