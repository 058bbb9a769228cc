package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.crossbrowser/pkg/logging"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	sendBuffer   = 64
)

// Message kinds sent to websocket clients.
const (
	KindDashboard = "dashboard"
	KindEvent     = "event"
)

// SubscribeMessage narrows or resets the event types a client
// receives. New clients receive every event type.
type SubscribeMessage struct {
	Action     string      `json:"action"` // "subscribe" or "unsubscribe"
	EventTypes []EventType `json:"event_types,omitempty"`
}

// Message is one frame sent to a client.
type Message struct {
	Kind      string         `json:"kind"`
	Event     *Event         `json:"event,omitempty"`
	Dashboard *DashboardData `json:"dashboard,omitempty"`
}

// Server streams collector events to websocket clients and
// serves the dashboard snapshot.
type Server struct {
	addr      string
	collector *EventCollector
	dashboard *DashboardData
	logger    logging.Logger
	upgrader  websocket.Upgrader
	extra     map[string]http.Handler

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	server      *http.Server
	attach      sync.Once
}

type subscriber struct {
	conn *websocket.Conn
	send chan Message

	mu     sync.RWMutex
	all    bool
	filter map[EventType]bool
}

func (sub *subscriber) wants(t EventType) bool {
	sub.mu.RLock()
	defer sub.mu.RUnlock()
	return sub.all || sub.filter[t]
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(l logging.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithHandler mounts an additional handler, e.g. metrics.
func WithHandler(path string, h http.Handler) ServerOption {
	return func(s *Server) { s.extra[path] = h }
}

// NewServer creates a monitor server for addr.
func NewServer(
	addr string,
	collector *EventCollector,
	dashboard *DashboardData,
	opts ...ServerOption,
) *Server {
	s := &Server{
		addr:        addr,
		collector:   collector,
		dashboard:   dashboard,
		extra:       make(map[string]http.Handler),
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNull(s.logger)
	return s
}

// Attach starts forwarding collector events to the dashboard and
// to clients. Events emitted before Attach are not forwarded. It is
// idempotent.
func (s *Server) Attach() {
	s.attach.Do(func() {
		s.collector.OnEvent(func(event Event) {
			s.dashboard.UpdateFromEvent(event)
			s.broadcast(event)
		})
	})
}

// Finish sets the run status and pushes the final dashboard to
// every client.
func (s *Server) Finish(status string) {
	s.dashboard.SetStatus(status)
	msg := Message{Kind: KindDashboard, Dashboard: s.dashboard.Snapshot()}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sub := range s.subscribers {
		select {
		case sub.send <- msg:
		default:
		}
	}
}

// Handler returns the HTTP handler. It attaches the server to the
// collector.
func (s *Server) Handler() http.Handler {
	s.Attach()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	for path, h := range s.extra {
		mux.Handle(path, h)
	}
	return mux
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.dashboard.Snapshot())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.ErrorField(err))
		return
	}

	sub := &subscriber{
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		all:    true,
		filter: make(map[EventType]bool),
	}
	// Queue the snapshot before registering so it is the first frame.
	sub.send <- Message{Kind: KindDashboard, Dashboard: s.dashboard.Snapshot()}

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("websocket client connected",
		logging.StringField("remote_addr", r.RemoteAddr))

	go s.writePump(sub)
	go s.readPump(sub)
}

func (s *Server) remove(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[sub]; ok {
		delete(s.subscribers, sub)
		close(sub.send)
	}
}

func (s *Server) readPump(sub *subscriber) {
	defer s.remove(sub)

	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg SubscribeMessage
		if err := sub.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", logging.ErrorField(err))
			}
			return
		}
		switch msg.Action {
		case "subscribe":
			sub.mu.Lock()
			sub.all = len(msg.EventTypes) == 0
			sub.filter = make(map[EventType]bool, len(msg.EventTypes))
			for _, t := range msg.EventTypes {
				sub.filter[t] = true
			}
			sub.mu.Unlock()
		case "unsubscribe":
			sub.mu.Lock()
			sub.all = false
			sub.filter = make(map[EventType]bool)
			sub.mu.Unlock()
		default:
			s.logger.Warn("unknown websocket action",
				logging.StringField("action", msg.Action))
		}
	}
}

func (s *Server) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast queues event for every interested client. Slow
// clients drop events rather than block the run.
func (s *Server) broadcast(event Event) {
	msg := Message{Kind: KindEvent, Event: &event}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sub := range s.subscribers {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.send <- msg:
		default:
		}
	}
}
