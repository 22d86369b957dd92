package preview

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	sessionID string
	conn      *websocket.Conn
}

type envelope struct {
	sessionID string
	payload   []byte
}

// Hub fans live preview updates out to websocket clients, grouped by edit
// session. Client maps are owned by the Run loop; everything else talks to
// it over channels.
type Hub struct {
	log        *logger.Logger
	register   chan *client
	unregister chan *client
	broadcast  chan envelope
	closed     chan string
	clients    map[string]map[*websocket.Conn]bool
}

// NewHub creates a hub. Start it with go hub.Run().
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan envelope, 64),
		closed:     make(chan string),
		clients:    make(map[string]map[*websocket.Conn]bool),
	}
}

// Run owns the client maps. It never returns.
func (h *Hub) Run() {
	for {
		select {
		case cl := <-h.register:
			if h.clients[cl.sessionID] == nil {
				h.clients[cl.sessionID] = make(map[*websocket.Conn]bool)
			}
			h.clients[cl.sessionID][cl.conn] = true

		case cl := <-h.unregister:
			if conns, ok := h.clients[cl.sessionID]; ok {
				if conns[cl.conn] {
					delete(conns, cl.conn)
					cl.conn.Close()
				}
				if len(conns) == 0 {
					delete(h.clients, cl.sessionID)
				}
			}

		case msg := <-h.broadcast:
			for conn := range h.clients[msg.sessionID] {
				if err := conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					conn.Close()
					delete(h.clients[msg.sessionID], conn)
				}
			}

		case sessionID := <-h.closed:
			for conn := range h.clients[sessionID] {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				conn.Close()
			}
			delete(h.clients, sessionID)
		}
	}
}

// BroadcastPreview pushes a recomputed draft to every client watching the
// session. It never blocks: if the hub is backed up the update is dropped,
// the next recompute supersedes it anyway.
func (h *Hub) BroadcastPreview(sessionID string, cfg models.SiteConfig) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		h.log.Error("Failed to encode preview payload", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}

	select {
	case h.broadcast <- envelope{sessionID: sessionID, payload: payload}:
	default:
		h.log.Warn("Preview broadcast dropped", map[string]interface{}{"session_id": sessionID})
	}
}

// CloseSession disconnects every client watching the session.
func (h *Hub) CloseSession(sessionID string) {
	h.closed <- sessionID
}

// HandleConnection upgrades the request and pumps it until the peer hangs
// up. The client only listens; inbound messages are discarded.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	cl := &client{sessionID: sessionID, conn: conn}
	h.register <- cl

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister <- cl
			break
		}
	}
}
