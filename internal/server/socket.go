package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/favorites"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/storage"
	"github.com/gorilla/websocket"
)

const (
	wsPingInterval = 30 * time.Second
	wsReadDeadline = 90 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 16
)

// SocketRequest is a message sent by a socket client.
type SocketRequest struct {
	Action string `json:"action"` // "toggle"
	ID     int    `json:"id"`
}

// SocketMessage is a message pushed to a socket client. Every message carries the current set.
type SocketMessage struct {
	Type     string `json:"type"` // "favorites" or "error"
	IDs      []int  `json:"ids"`
	ID       int    `json:"id,omitempty"`       // toggled id, for toggle replies
	Favorite *bool  `json:"favorite,omitempty"` // new state of ID, for toggle replies
	Status   string `json:"status,omitempty"`   // load status, on the first message
	Error    string `json:"error,omitempty"`
}

// SocketHub serves GET /ws/favorites. Every connection is its own favorites context with its own
// [favorites.Store], so a toggle on one socket reaches the others as an external change.
type SocketHub struct {
	newStorage func() storage.Storage
	storeOpts  []favorites.Option
	origins    []string
	logger     *log.Logger
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	done  chan struct{}
	once  sync.Once
}

// NewSocketHub creates a hub that opens a storage context per connection with newStorage.
// origins restricts the Origin header; empty allows any origin.
func NewSocketHub(newStorage func() storage.Storage, origins []string, logger *log.Logger, opts ...favorites.Option) *SocketHub {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	h := &SocketHub{
		newStorage: newStorage,
		storeOpts:  append([]favorites.Option{favorites.WithLogger(logger)}, opts...),
		origins:    origins,
		logger:     logger,
		conns:      make(map[*websocket.Conn]struct{}),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
	}
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *SocketHub) Routes() []string {
	return []string{"GET /ws/favorites"}
}

func (h *SocketHub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 || slices.Contains(h.origins, "*") {
		return true
	}
	return slices.Contains(h.origins, origin)
}

// Count returns the number of open connections.
func (h *SocketHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *SocketHub) add(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *SocketHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Shutdown closes all connections and makes new upgrades fail.
func (h *SocketHub) Shutdown() {
	h.once.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	}
	clear(h.conns)
}

func (h *SocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		writeError(w, http.StatusServiceUnavailable, "server shutting down")
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("socket upgrade failed", "error", err)
		return
	}
	if !h.add(conn) {
		_ = conn.Close()
		return
	}
	defer func() {
		h.remove(conn)
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	store := favorites.New(h.newStorage(), h.storeOpts...)
	result := store.Load(ctx)
	defer store.Close()

	stop := make(chan struct{})
	defer close(stop)
	out := make(chan SocketMessage, wsSendBuffer)
	send := func(msg SocketMessage) {
		select {
		case out <- msg:
		case <-stop:
		}
	}

	out <- SocketMessage{Type: "favorites", IDs: result.Favorites, Status: result.Status.String()}
	unsubscribe := store.OnExternalChange(func(ids []int) {
		send(SocketMessage{Type: "favorites", IDs: ids})
	})
	defer unsubscribe()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			var req SocketRequest
			if err := json.Unmarshal(data, &req); err != nil {
				send(SocketMessage{Type: "error", IDs: store.Favorites(), Error: "invalid message: " + err.Error()})
				continue
			}
			send(h.handleRequest(ctx, store, req))
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("socket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				h.logger.Debug("socket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

func (h *SocketHub) handleRequest(ctx context.Context, store *favorites.Store, req SocketRequest) SocketMessage {
	switch req.Action {
	case "toggle":
		favorite, err := store.Toggle(ctx, req.ID)
		if err != nil {
			return SocketMessage{Type: "error", IDs: store.Favorites(), ID: req.ID, Error: err.Error()}
		}
		return SocketMessage{Type: "favorites", IDs: store.Favorites(), ID: req.ID, Favorite: &favorite}
	case "get":
		return SocketMessage{Type: "favorites", IDs: store.Favorites()}
	default:
		return SocketMessage{Type: "error", IDs: store.Favorites(), Error: "unknown action " + req.Action}
	}
}
