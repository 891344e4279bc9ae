package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const maxInboundMessageSize = 512

// Server upgrades HTTP requests into session feed subscriptions.
type Server struct {
	hub          *Hub
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	writeTimeout time.Duration
	log          logrus.FieldLogger
}

// NewServer creates a new WebSocket server.
func NewServer(h *Hub, pingInterval, writeTimeout time.Duration, log logrus.FieldLogger) *Server {
	return &Server{
		hub:          h,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		log:          log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleEvents subscribes the caller to a patient's session events.
// GET /v1/interview-sessions/:patient_id/events
func (s *Server) HandleEvents(c echo.Context) error {
	patientID := c.Param("patient_id")
	if strings.TrimSpace(patientID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "patient_id is required"})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.WithError(err).Warn("failed to upgrade websocket")
		return nil
	}

	conn := s.hub.NewConnection(ws, patientID)
	if !s.hub.Register(conn) {
		ws.Close()
		return nil
	}
	ws.SetReadLimit(maxInboundMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump drains client frames so control messages are processed and
// unregisters the connection once the peer goes away.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	readTimeout := 2 * s.pingInterval
	conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.WithError(err).Debug("websocket read error")
			}
			return
		}
	}
}

// writePump writes queued events and keeps the connection alive with pings.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.WithError(err).Debug("failed to write websocket message")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
