package websocket

import (
	"encoding/json"
	"plantidentifier/internal/dto"
	"plantidentifier/internal/logger"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Frames are dropped instead of queued once this many messages are pending.
	broadcastBuffer = 16
	// Messages queued per viewer before it counts as stalled.
	viewerBuffer = 16
	// Time allowed to write a message to a viewer.
	defaultWriteWait = 10 * time.Second
)

// viewer owns the outbound queue of one connection. Only its writePump
// writes to conn.
type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

type envelope struct {
	message   []byte
	droppable bool
	// nil addresses every viewer
	target *websocket.Conn
}

type HubService struct {
	clients    map[*websocket.Conn]*viewer
	broadcast  chan envelope
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	writeWait  time.Duration
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]*viewer),
		broadcast:  make(chan envelope, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		writeWait:  defaultWriteWait,
		logger:     logger,
	}
}

// Run owns the viewer set. It never writes to a socket itself, so a slow
// viewer cannot hold up broadcasts to the others.
func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			v := &viewer{conn: client, send: make(chan []byte, viewerBuffer)}
			h.mutex.Lock()
			h.clients[client] = v
			count := len(h.clients)
			h.mutex.Unlock()
			go h.writePump(v)
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			_, ok := h.clients[client]
			if ok {
				h.remove(client)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			client.Close()
			if ok {
				h.logger.Info("Viewer disconnected. Total: %d", count)
			}

		case e := <-h.broadcast:
			h.mutex.Lock()
			for client, v := range h.clients {
				if e.target != nil && e.target != client {
					continue
				}
				select {
				case v.send <- e.message:
				default:
					if e.droppable {
						continue
					}
					h.logger.Warning("Viewer is not keeping up, disconnecting")
					h.remove(client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// remove must be called with the mutex held.
func (h *HubService) remove(client *websocket.Conn) {
	close(h.clients[client].send)
	delete(h.clients, client)
}

func (h *HubService) writePump(v *viewer) {
	for message := range v.send {
		v.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := v.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warning("Error sending message: %v", err)
			h.Unregister(v.conn)
			return
		}
	}
}

func (h *HubService) Register(client *websocket.Conn) {
	h.register <- client
}

func (h *HubService) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// BroadcastFrame sends a camera frame to every viewer. Frames are dropped while the hub
// or a viewer is behind.
func (h *HubService) BroadcastFrame(frame []byte) {
	message, err := json.Marshal(dto.Event{Type: dto.EventFrame, Frame: frame})
	if err != nil {
		h.logger.Error("Error encoding frame event: %v", err)
		return
	}

	select {
	case h.broadcast <- envelope{message: message, droppable: true}:
	default:
	}
}

// BroadcastState sends the current UI state to every viewer. A viewer whose
// queue is full is disconnected rather than left with a stale state.
func (h *HubService) BroadcastState(state dto.State) {
	h.sendState(state, nil)
}

// SendState queues state for a single registered viewer.
func (h *HubService) SendState(client *websocket.Conn, state dto.State) {
	h.sendState(state, client)
}

func (h *HubService) sendState(state dto.State, target *websocket.Conn) {
	message, err := json.Marshal(dto.Event{Type: dto.EventState, State: &state})
	if err != nil {
		h.logger.Error("Error encoding state event: %v", err)
		return
	}
	h.broadcast <- envelope{message: message, target: target}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
