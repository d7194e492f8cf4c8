package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"
	"github.com/valyala/bytebufferpool"

	"github.com/mapl11/fantasy-cricket/internal/domain/notification"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
)

var _ notification.Notifier = (*WebSocketHub)(nil)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
	sendBuffer     = 32
)

// envelope is the wire shape of every pushed event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	At    int64  `json:"at"`
}

// Client-to-server actions for match room membership.
const (
	actionJoinMatch  = "join-match"
	actionLeaveMatch = "leave-match"
)

// clientCommand is what connected clients may send upstream: joining and
// leaving match rooms.
type clientCommand struct {
	Action  string `json:"action"`
	MatchID string `json:"matchId"`
}

type wsClient struct {
	hub     *WebSocketHub
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	matches map[string]struct{}
}

// WebSocketHub pushes team events to connected clients. Users receive the
// events addressed to them on every open connection; match rooms carry
// broadcast score updates to whoever subscribed.
type WebSocketHub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	byUser  map[string]map[*wsClient]struct{}
	byMatch map[string]map[*wsClient]struct{}
}

func NewWebSocketHub(logger *logging.Logger) *WebSocketHub {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &WebSocketHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		byUser:  make(map[string]map[*wsClient]struct{}),
		byMatch: make(map[string]map[*wsClient]struct{}),
	}
}

// HandleConnection upgrades the request and serves the connection until the
// client goes away. The caller must have authenticated userID already.
func (h *WebSocketHub) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := &wsClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		matches: make(map[string]struct{}),
	}
	h.register(client)

	go client.writePump()
	client.readPump()
}

// NotifyUsers pushes the event to every open connection of every listed user.
func (h *WebSocketHub) NotifyUsers(ctx context.Context, userIDs []string, event string, payload any) {
	message, ok := h.encode(ctx, event, payload)
	if !ok {
		return
	}

	var wg conc.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		wg.Go(func() {
			h.mu.RLock()
			clients := make([]*wsClient, 0, len(h.byUser[userID]))
			for client := range h.byUser[userID] {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				client.enqueue(message)
			}
		})
	}
	wg.Wait()
}

// BroadcastToMatch pushes the event to every subscriber of the match room.
func (h *WebSocketHub) BroadcastToMatch(ctx context.Context, matchID, event string, payload any) {
	message, ok := h.encode(ctx, event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.byMatch[matchID]))
	for client := range h.byMatch[matchID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.enqueue(message)
	}
}

// Shutdown closes every connection. Pending queued messages are dropped.
func (h *WebSocketHub) Shutdown() {
	h.mu.Lock()
	clients := make([]*wsClient, 0)
	for _, set := range h.byUser {
		for client := range set {
			clients = append(clients, client)
		}
	}
	h.byUser = make(map[string]map[*wsClient]struct{})
	h.byMatch = make(map[string]map[*wsClient]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		close(client.send)
		_ = client.conn.Close()
	}
}

func (h *WebSocketHub) encode(ctx context.Context, event string, payload any) ([]byte, bool) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	raw, err := sonic.Marshal(envelope{
		Event: event,
		Data:  payload,
		At:    time.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "encode websocket event failed", "event", event, "error", err)
		return nil, false
	}
	if _, err := buf.Write(raw); err != nil {
		h.logger.ErrorContext(ctx, "buffer websocket event failed", "event", event, "error", err)
		return nil, false
	}

	message := make([]byte, buf.Len())
	copy(message, buf.Bytes())

	return message, true
}

func (h *WebSocketHub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byUser[client.userID] == nil {
		h.byUser[client.userID] = make(map[*wsClient]struct{})
	}
	h.byUser[client.userID][client] = struct{}{}
}

func (h *WebSocketHub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.byUser[client.userID]; ok {
		if _, present := set[client]; !present {
			return
		}
		delete(set, client)
		if len(set) == 0 {
			delete(h.byUser, client.userID)
		}
		close(client.send)
	}
	for matchID := range client.matches {
		h.leaveMatchLocked(client, matchID)
	}
}

func (h *WebSocketHub) joinMatch(client *wsClient, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byMatch[matchID] == nil {
		h.byMatch[matchID] = make(map[*wsClient]struct{})
	}
	h.byMatch[matchID][client] = struct{}{}
	client.matches[matchID] = struct{}{}
}

func (h *WebSocketHub) leaveMatch(client *wsClient, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveMatchLocked(client, matchID)
}

func (h *WebSocketHub) leaveMatchLocked(client *wsClient, matchID string) {
	if set, ok := h.byMatch[matchID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.byMatch, matchID)
		}
	}
	delete(client.matches, matchID)
}

func (c *wsClient) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		// Slow consumer; drop the connection rather than block the hub.
		c.hub.unregister(c)
		_ = c.conn.Close()
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd clientCommand
		if err := sonic.Unmarshal(raw, &cmd); err != nil || cmd.MatchID == "" {
			continue
		}
		switch cmd.Action {
		case actionJoinMatch:
			c.hub.joinMatch(c, cmd.MatchID)
		case actionLeaveMatch:
			c.hub.leaveMatch(c, cmd.MatchID)
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
