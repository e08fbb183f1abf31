package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "failed to dial %s", url)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, messageType MessageType, data any) {
	t.Helper()

	msg := &Message{Type: messageType, Timestamp: time.Now()}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readWS reads the next message and decodes its data into out.
func readWS(t *testing.T, conn *websocket.Conn, want MessageType, out any) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, want, msg.Type, "unexpected message: %s", string(msg.Data))
	if out != nil {
		require.NoError(t, json.Unmarshal(msg.Data, out))
	}
}
