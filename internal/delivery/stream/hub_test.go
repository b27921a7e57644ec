package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "ai_chess/internal/domain/game"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	var evt Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&evt))
	return evt
}

func TestHub_BroadcastsStates(t *testing.T) {
	req := require.New(t)
	hub := NewHub(zap.NewNop().Sugar())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	// Given two connected dashboards
	first := dial(t, server)
	second := dial(t, server)
	req.Eventually(func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	// When a state is published
	hub.Notify(domain.GameState{ID: "game-1", Status: domain.StatusInProgress})

	// Then both receive it
	for _, conn := range []*websocket.Conn{first, second} {
		evt := readEvent(t, conn)
		req.Equal("state", evt.Type)
		req.Equal("game-1", evt.State.ID)
		req.Equal(domain.StatusInProgress, evt.State.Status)
	}
}

func TestHub_SendsLastStateOnConnect(t *testing.T) {
	req := require.New(t)
	hub := NewHub(zap.NewNop().Sugar())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	hub.Notify(domain.GameState{ID: "game-1", Status: domain.StatusPaused})

	evt := readEvent(t, dial(t, server))
	req.Equal(domain.StatusPaused, evt.State.Status)
}

func TestHub_ForgetsClosedClients(t *testing.T) {
	req := require.New(t)
	hub := NewHub(zap.NewNop().Sugar())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dial(t, server)
	req.Eventually(func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	req.NoError(conn.Close())
	req.Eventually(func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)

	hub.Notify(domain.GameState{ID: "after-close"})
}
