package ws

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/internal/contracts"
	"github.com/wonny/limitup/pkg/logger"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsSnapshot(t *testing.T) {
	hub := NewHub(logger.NewWithWriter(io.Discard))
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv.URL)

	// registration is asynchronous to the upgrade response
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastSnapshot(&contracts.Snapshot{
		Market: "TW",
		Date:   time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		Stats:  contracts.SnapshotStats{LockedCount: 2},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt struct {
		Type   string `json:"type"`
		Market string `json:"market"`
		Data   struct {
			Stats contracts.SnapshotStats `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, "snapshot", evt.Type)
	assert.Equal(t, "TW", evt.Market)
	assert.Equal(t, 2, evt.Data.Stats.LockedCount)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub(logger.NewWithWriter(io.Discard))
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv.URL)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
