package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/corridor/internal/core/events/bus"
	"github.com/zeusync/corridor/internal/core/observability/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// Viewers only send control frames.
	maxReadSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Message is the JSON frame sent to viewers for every bus event.
type Message struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed relays every event on a bus to connected websocket viewers. Slow
// viewers lose frames instead of stalling the publisher.
type Feed struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	buffer  int
	sub     bus.Subscription
	logger  log.Log
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewFeed(events bus.EventBus, buffer int, logger log.Log) (*Feed, error) {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = log.NewNop()
	}
	f := &Feed{
		clients: make(map[*client]struct{}),
		buffer:  buffer,
		logger:  logger.With(log.String("component", "feed")),
	}
	sub, err := events.Subscribe(bus.Wildcard, f.handle)
	if err != nil {
		return nil, err
	}
	f.sub = sub
	return f, nil
}

func (f *Feed) handle(ev bus.Event) error {
	data, err := json.Marshal(Message{
		Type:      ev.Type(),
		Source:    ev.Source(),
		Timestamp: ev.Timestamp(),
		Data:      ev.Data(),
	})
	if err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		select {
		case c.send <- data:
			f.sent.Add(1)
		default:
			f.dropped.Add(1)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and streams events until the viewer leaves.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, f.buffer)}
	if !f.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	f.logger.Info("Viewer connected", log.String("remote_addr", conn.RemoteAddr().String()))

	go f.writePump(c)
	f.readPump(c)
}

func (f *Feed) register(c *client) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

// unregister closes c.send, which stops the write pump.
func (f *Feed) unregister(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; !ok {
		return
	}
	delete(f.clients, c)
	close(c.send)
}

func (f *Feed) readPump(c *client) {
	defer func() {
		f.unregister(c)
		f.logger.Info("Viewer disconnected", log.String("remote_addr", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				f.logger.Debug("Viewer write failed", log.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Sent and Dropped count frames queued to and dropped for viewers.
func (f *Feed) Sent() uint64    { return f.sent.Load() }
func (f *Feed) Dropped() uint64 { return f.dropped.Load() }

// Close unsubscribes from the bus and disconnects every viewer.
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()
	return f.sub.Cancel()
}
