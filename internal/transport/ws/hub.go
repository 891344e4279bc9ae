// Package ws streams live interview session events to WebSocket subscribers.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// Connection is one subscriber watching a single patient's session.
type Connection struct {
	ID        string
	PatientID string
	Conn      *websocket.Conn
	Send      chan []byte
	mu        sync.Mutex
}

// Hub fans session events out to the connections subscribed to each patient.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// patients maps patient_id to set of connection IDs
	patients map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *patientMessage
	done       chan struct{}

	log logrus.FieldLogger
	mu  sync.RWMutex
}

type patientMessage struct {
	PatientID string
	Data      []byte
}

// NewHub creates a new Hub. Call Run before registering connections.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		patients:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *patientMessage, 256),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.patients[conn.PatientID] == nil {
				h.patients[conn.PatientID] = make(map[string]bool)
			}
			h.patients[conn.PatientID][conn.ID] = true
			h.mu.Unlock()
			h.log.WithField("conn_id", conn.ID).WithField("patient_id", conn.PatientID).Debug("session feed subscriber registered")

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Connection
			for connID := range h.patients[msg.PatientID] {
				conn, ok := h.connections[connID]
				if !ok {
					continue
				}
				select {
				case conn.Send <- msg.Data:
				default:
					slow = append(slow, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range slow {
				h.log.WithField("conn_id", conn.ID).Warn("subscriber buffer full, closing")
				h.remove(conn)
			}
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	if set := h.patients[conn.PatientID]; set != nil {
		delete(set, conn.ID)
		if len(set) == 0 {
			delete(h.patients, conn.PatientID)
		}
	}
	close(conn.Send)
	h.log.WithField("conn_id", conn.ID).Debug("session feed subscriber unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.connections {
		close(conn.Send)
		delete(h.connections, id)
	}
	h.patients = make(map[string]map[string]bool)
}

// NewConnection wraps a socket subscribed to patientID.
func (h *Hub) NewConnection(ws *websocket.Conn, patientID string) *Connection {
	return &Connection{
		ID:        uuid.New().String(),
		PatientID: patientID,
		Conn:      ws,
		Send:      make(chan []byte, 64),
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish implements session.Notifier. Events are dropped rather than
// blocking the caller when the broadcast queue is full.
func (h *Hub) Publish(patientID string, event domain.SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal session event")
		return
	}
	select {
	case h.broadcast <- &patientMessage{PatientID: patientID, Data: data}:
	default:
		h.log.WithField("patient_id", patientID).Warn("session event queue full, dropping event")
	}
}

// SubscriberCount returns the number of connections watching patientID.
func (h *Hub) SubscriberCount(patientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.patients[patientID])
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
