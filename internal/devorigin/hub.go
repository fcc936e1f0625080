package devorigin

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/socket"
)

const (
	eventError   = "error"
	pingInterval = 20 * time.Second
	readTimeout  = 60 * time.Second
)

type client struct {
	conn  *socket.WSConn
	rooms map[string]struct{}
}

// Hub tracks socket clients and the rooms they joined. A sent message is
// ingested and echoed to every client in its room, the sender included.
type Hub struct {
	svc      *Service
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	rooms   map[string]map[*client]struct{}
	wg      sync.WaitGroup
}

// NewHub creates a hub ingesting through svc.
func NewHub(svc *Service, logger *zap.Logger) *Hub {
	return &Hub{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:      func(*http.Request) bool { return true },
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		clients: make(map[*client]struct{}),
		rooms:   make(map[string]map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the socket until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	c := &client{conn: socket.Wrap(ws), rooms: make(map[string]struct{})}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.wg.Add(1)
	defer h.wg.Done()
	defer h.drop(c)

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(c, done)

	h.logger.Info("socket connected", zap.String("remote", r.RemoteAddr))
	for {
		ev, err := c.conn.Next()
		if err != nil {
			if !socket.IsClosed(err) {
				h.logger.Debug("socket read ended", zap.Error(err))
			}
			return
		}
		h.handle(c, ev)
	}
}

func (h *Hub) keepAlive(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) handle(c *client, ev socket.Event) {
	switch ev.Name {
	case socket.EventJoinRoom, socket.EventLeaveRoom:
		var roomID string
		if err := json.Unmarshal(ev.Data, &roomID); err != nil || roomID == "" {
			h.reject(c, ev.Name+": room id must be a non-empty string")
			return
		}
		if ev.Name == socket.EventJoinRoom {
			h.join(c, roomID)
		} else {
			h.leave(c, roomID)
		}
	case socket.EventMessage:
		var out chat.Outbound
		if err := json.Unmarshal(ev.Data, &out); err != nil {
			h.reject(c, "message: malformed payload")
			return
		}
		push, err := h.svc.Ingest(out)
		if err != nil {
			h.logger.Warn("message rejected", zap.Error(err))
			h.reject(c, err.Error())
			return
		}
		h.Broadcast(push)
	default:
		h.reject(c, "unknown event "+ev.Name)
	}
}

func (h *Hub) reject(c *client, reason string) {
	if err := c.conn.Emit(eventError, reason); err != nil {
		h.logger.Debug("error event not delivered", zap.Error(err))
	}
}

func (h *Hub) join(c *client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
	c.rooms[roomID] = struct{}{}
	h.logger.Debug("joined room", zap.String("room_id", roomID), zap.Int("members", len(members)))
}

func (h *Hub) leave(c *client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomID)
}

func (h *Hub) leaveLocked(c *client, roomID string) {
	delete(c.rooms, roomID)
	members := h.rooms[roomID]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	for roomID := range c.rooms {
		h.leaveLocked(c, roomID)
	}
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
	h.logger.Info("socket disconnected")
}

// Broadcast sends push to every client joined to its room.
func (h *Hub) Broadcast(push socket.Push) {
	ev, err := socket.NewEvent(socket.EventMessage, push)
	if err != nil {
		h.logger.Error("encode push", zap.Error(err))
		return
	}
	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[push.RoomID]))
	for c := range h.rooms[push.RoomID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if err := c.conn.WriteEvent(ev); err != nil {
			h.logger.Debug("push not delivered", zap.Error(err))
		}
	}
}

// Members returns how many clients joined roomID.
func (h *Hub) Members(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Close disconnects every client and waits for their handlers to return.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		_ = c.conn.Close()
	}
	h.wg.Wait()
}
