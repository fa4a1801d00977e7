package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/router"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Message is what subscribers receive for every emitted event
type Message struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	Time  time.Time `json:"time"`
}

// Hub fans events out to connected admin browsers
type Hub struct {
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	addr string
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the route sits behind the session cookie
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// InitWebSocketModule mounts GET /ws on group and relays every emitter event
func InitWebSocketModule(group *router.RouterGroup, em *emitter.Emitter, log logger.Logger) *Hub {
	hub := NewHub(log)
	hub.Subscribe(em)
	group.GET("/ws", hub.Handler())
	return hub
}

// Subscribe broadcasts all events raised on em
func (h *Hub) Subscribe(em *emitter.Emitter) {
	if em == nil {
		return
	}
	em.OnAll(func(event string, payload any) {
		h.Broadcast(event, payload)
	})
}

// Broadcast queues a message for every client without blocking. Clients
// whose buffer is full are dropped; their write pump then closes the
// connection.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload, Time: time.Now().UTC()})
	if err != nil {
		h.log.Warn("websocket: failed to encode event", logger.String("event", event), logger.Err(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
			h.log.Debug("websocket: dropped slow client",
				logger.String("remote", c.addr),
				logger.String("event", event),
				logger.Int("buffer", cap(c.send)))
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Handler() router.HandlerFunc {
	return func(c *router.Context) error {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", logger.Err(err))
			return nil
		}

		cl := &client{conn: conn, send: make(chan []byte, sendBuffer), addr: c.ClientIP()}
		h.mu.Lock()
		h.clients[cl] = struct{}{}
		h.mu.Unlock()

		go h.writePump(cl)
		h.readPump(cl)
		return nil
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}

// readPump discards inbound frames and notices disconnects
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.remove(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
