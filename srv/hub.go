package srv

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alphabeta2023/cubegame/game"
)

// PropDeleter handles inbound delete requests from viewers.
type PropDeleter interface {
	DeleteByID(id int64) (bool, error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks open prop-feed connections and fans prop events out to all of
// them. Fan-out is best effort: a slow or dead connection drops frames
// instead of blocking delivery to the others, and is removed only when its
// own reader exits.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	props   PropDeleter
	metrics *Metrics
	log     *zap.SugaredLogger
}

func NewHub(props PropDeleter, metrics *Metrics, log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		props:   props,
		metrics: metrics,
		log:     log,
	}
}

// SetPropDeleter breaks the hub/spawner construction cycle: the spawner
// notifies the hub on spawns, the hub routes viewer deletes to the spawner.
func (h *Hub) SetPropDeleter(props PropDeleter) { h.props = props }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request into a prop-feed connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("hub: upgrade: %v", err)
		return
	}
	h.HandleWS(conn)
}

// HandleWS registers the connection and runs its read loop until the peer
// goes away.
func (h *Hub) HandleWS(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.IncWSConnected()

	go c.writer()
	h.reader(c)
}

func (h *Hub) reader(c *client) {
	defer func() {
		// Closing send under the lock keeps broadcast from writing to a
		// closed channel.
		h.mu.Lock()
		delete(h.clients, c)
		close(c.send)
		h.mu.Unlock()
		h.metrics.IncWSDisconnected()
		c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wireMsg
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		// Deletion is the only inbound request; everything else is ignored.
		if msg.Type != msgDeleteProp {
			continue
		}
		deleted, err := h.props.DeleteByID(msg.ID)
		if err != nil {
			h.log.Warnf("hub: delete prop %d: %v", msg.ID, err)
			continue
		}
		if deleted {
			h.BroadcastPropDeleted(msg.ID)
		}
	}
}

func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

const msgDeleteProp = "DELETE_PROP"

type wireMsg struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// BroadcastPropCreated pushes the full prop to every open connection.
func (h *Hub) BroadcastPropCreated(p *game.Prop) {
	b, err := json.Marshal(p)
	if err != nil {
		h.log.Warnf("hub: marshal prop %d: %v", p.ID, err)
		return
	}
	h.broadcast(b)
}

// BroadcastPropDeleted announces a deletion to every open connection,
// including the one that requested it.
func (h *Hub) BroadcastPropDeleted(id int64) {
	b, _ := json.Marshal(wireMsg{Type: msgDeleteProp, ID: id})
	h.broadcast(b)
	h.metrics.IncPropDeleted()
}

func (h *Hub) broadcast(b []byte) {
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			// Full queue: drop this frame for this viewer rather than stall
			// the rest of the fan-out.
		}
	}
	h.mu.Unlock()
	h.metrics.AddBroadcasts(int64(n))
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
