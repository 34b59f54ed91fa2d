package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/corridor/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Message types sent to clients
const (
	TypeStateUpdate   = "state_update"
	TypeEvent         = "event"
	TypeOpponentMoved = "opponent_moved"
	TypeError         = "error"
)

// ActionRelay is the only action clients may send
const ActionRelay = "relay"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what the hub sends to clients
type Message struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id"`
	Player    engine.PlayerID   `json:"player,omitempty"`
	Event     *engine.SyncEvent `json:"event,omitempty"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ClientMessage is what clients send to the hub
type ClientMessage struct {
	Action string           `json:"action"`
	Event  engine.SyncEvent `json:"event"`
}

// Client is one websocket connection bound to a match
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	player    engine.PlayerID
}

type outbound struct {
	message *Message
	// skip is left out of the fan-out, used for relays
	skip *Client
}

// Hub keeps the connections of every match and fans messages out to them.
// It never touches game state: relayed events are forwarded unvalidated.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case out := <-h.broadcast:
			h.fanOut(out)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every connection
func (h *Hub) Stop() {
	close(h.done)
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// player may be zero for spectators.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, player engine.PlayerID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("session", sessionID).Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		player:    player,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) send(out outbound) {
	select {
	case h.broadcast <- out:
	case <-h.done:
	}
}

// BroadcastToSession sends the current state to all clients of a match
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.send(outbound{message: &Message{
		Type:      TypeStateUpdate,
		SessionID: sessionID,
		GameState: state,
	}})
}

// BroadcastEvent sends an accepted event, with the state it produced, to all
// clients of a match
func (h *Hub) BroadcastEvent(sessionID string, player engine.PlayerID, ev *engine.SyncEvent, state *engine.GameState) {
	h.send(outbound{message: &Message{
		Type:      TypeEvent,
		SessionID: sessionID,
		Player:    player,
		Event:     ev,
		GameState: state,
	}})
}

// ClientCount returns the number of connections attached to a match
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.WithFields(log.Fields{
		"session": client.sessionID,
		"player":  client.player,
		"clients": len(h.sessions[client.sessionID]),
	}).Info("websocket client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.WithFields(log.Fields{
		"session":   client.sessionID,
		"remaining": len(clients),
	}).Info("websocket client unregistered")
}

func (h *Hub) fanOut(out outbound) {
	data, err := json.Marshal(out.message)
	if err != nil {
		log.Errorf("failed to marshal websocket message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[out.message.SessionID] {
		if client == out.skip {
			continue
		}
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.sessions {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// handle processes one frame read from the client
func (c *Client) handle(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(&Message{Type: TypeError, SessionID: c.sessionID, Error: err.Error()})
		return
	}
	if msg.Action != ActionRelay {
		c.reply(&Message{Type: TypeError, SessionID: c.sessionID, Error: "unknown action: " + msg.Action})
		return
	}

	if msg.Event.Type == "" {
		c.reply(&Message{Type: TypeError, SessionID: c.sessionID, Error: "relay without event"})
		return
	}

	ev := msg.Event
	c.hub.send(outbound{
		message: &Message{
			Type:      TypeOpponentMoved,
			SessionID: c.sessionID,
			Player:    c.player,
			Event:     &ev,
		},
		skip: c,
	})
}

// reply queues a message for this client only
func (c *Client) reply(m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.sessions[c.sessionID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump reads client frames until the connection closes
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithField("session", c.sessionID).Warnf("websocket error: %v", err)
			}
			break
		}
		c.handle(data)
	}
}

// writePump writes queued messages, one frame each, and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
