package obs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local debug feed; no cross-origin concerns.
		return true
	},
}

// Broadcaster streams tick decisions to websocket subscribers. Slow or broken
// subscribers are dropped rather than allowed to block the tick; events to a
// full send buffer are discarded.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*websocket.Conn]chan []byte
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[*websocket.Conn]chan []byte),
	}
}

// ServeHTTP upgrades the request and registers the connection as a
// subscriber. The connection lives until the peer closes it or its send
// buffer overflows.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("feed upgrade failed", slog.Any("error", err))
		return
	}

	send := make(chan []byte, 64)
	b.mu.Lock()
	b.subs[conn] = send
	b.mu.Unlock()
	slog.Info("feed subscriber connected", slog.String("remote", conn.RemoteAddr().String()))

	go b.writeLoop(conn, send)
	go b.readLoop(conn)
}

// EmitTick marshals the decision once and fans it out. Never blocks.
func (b *Broadcaster) EmitTick(d TickDecision) {
	data, err := json.Marshal(d)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, send := range b.subs {
		select {
		case send <- data:
		default:
			// Subscriber can't keep up; cut it loose.
			delete(b.subs, conn)
			close(send)
		}
	}
}

// Close tears down every subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, send := range b.subs {
		delete(b.subs, conn)
		close(send)
		_ = conn.Close()
	}
}

func (b *Broadcaster) writeLoop(conn *websocket.Conn, send <-chan []byte) {
	defer conn.Close()
	for data := range send {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			b.drop(conn)
			return
		}
	}
}

// readLoop drains control frames and detects peer disconnect.
func (b *Broadcaster) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			b.drop(conn)
			return
		}
	}
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if send, ok := b.subs[conn]; ok {
		delete(b.subs, conn)
		close(send)
	}
	_ = conn.Close()
}
