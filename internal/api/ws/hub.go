package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32 // mensagens pendentes por conexão antes de derrubá-la
)

// Notifier recebe as mudanças de estado que devem chegar à UI
type Notifier interface {
	Notify(msg Message)
}

// conn tem um único writer (writePump): gorilla/websocket não aceita writers concorrentes
type conn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
}

// enqueue nunca bloqueia; cliente que não drena o buffer é desconectado
func (c *conn) enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		c.close()
		return false
	}
}

// close encerra o writer e o socket; o loop de leitura sai em seguida
func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *conn) writePump(log *zap.Logger) {
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Debug("ws write failed", zap.Error(err))
				c.close()
				return
			}
		}
	}
}

// Hub gerencia conexões WebSocket e assinaturas por userKey
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	// userKey -> set of connections
	subs map[string]map[*conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[string]map[*conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// O query param userKey, se presente, já inscreve a conexão.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newConn(ws)
	defer c.close()
	go c.writePump(h.log)

	if key := r.URL.Query().Get("userKey"); key != "" {
		h.subscribe(key, c)
	}

	for {
		var msg ClientMsg
		if err := ws.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.UserKey != "" {
				h.subscribe(msg.UserKey, c)
			}
		case "unsubscribe":
			h.unsubscribe(msg.UserKey, c)
		case "ping":
			b, _ := json.Marshal(map[string]string{"type": "pong"})
			c.enqueue(b)
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for key, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(userKey string, c *conn) {
	h.mu.Lock()
	if _, ok := h.subs[userKey]; !ok {
		h.subs[userKey] = make(map[*conn]struct{})
	}
	h.subs[userKey][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(userKey string, c *conn) {
	h.mu.Lock()
	if m, ok := h.subs[userKey]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, userKey)
		}
	}
	h.mu.Unlock()
}

// Subscribers conta as conexões inscritas no userKey
func (h *Hub) Subscribers(userKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userKey])
}

// Broadcast envia a mensagem para todas as conexões inscritas no userKey
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.subs[msg.UserKey]))
	for c := range h.subs[msg.UserKey] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	for _, c := range conns {
		if !c.enqueue(b) {
			h.log.Warn("ws client too slow, dropping connection", zap.String("user", msg.UserKey))
		}
	}
}

// Notify entrega localmente; com várias instâncias use RedisRelay
func (h *Hub) Notify(msg Message) { h.Broadcast(msg) }
