package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/intake/internal/domain"
	"github.com/xiaot623/gogo/intake/internal/logger"
)

func newTestFeed(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logger.Discard())
	go hub.Run(ctx)

	e := echo.New()
	srv := NewServer(hub, time.Second, time.Second, logger.Discard())
	e.GET("/v1/interview-sessions/:patient_id/events", srv.HandleEvents)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFeedDeliversEventsToPatientSubscribers(t *testing.T) {
	hub, base := newTestFeed(t)
	p1 := dial(t, base+"/v1/interview-sessions/p1/events")
	p2 := dial(t, base+"/v1/interview-sessions/p2/events")

	require.Eventually(t, func() bool {
		return hub.SubscriberCount("p1") == 1 && hub.SubscriberCount("p2") == 1
	}, time.Second, 10*time.Millisecond)

	turn := domain.Turn{Role: domain.RoleAgent, Content: "hello", Timestamp: time.Now().UTC()}
	hub.Publish("p1", domain.SessionEvent{Type: domain.EventTurnAppended, PatientID: "p1", Turn: &turn})

	p1.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := p1.ReadMessage()
	require.NoError(t, err)

	var got domain.SessionEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, domain.EventTurnAppended, got.Type)
	require.NotNil(t, got.Turn)
	assert.Equal(t, "hello", got.Turn.Content)

	p2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = p2.ReadMessage()
	assert.Error(t, err, "p2 must not receive p1 events")
}

func TestFeedUnregistersOnClose(t *testing.T) {
	hub, base := newTestFeed(t)
	conn := dial(t, base+"/v1/interview-sessions/p1/events")

	require.Eventually(t, func() bool { return hub.SubscriberCount("p1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.SubscriberCount("p1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := NewHub(logger.Discard())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish("p1", domain.SessionEvent{Type: domain.EventSessionEnded, PatientID: "p1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}
