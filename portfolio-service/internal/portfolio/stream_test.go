package portfolio

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, conn *websocket.Conn) StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newTestStore(t, nil, nil)
	require.NoError(t, store.UpdateCash(100))

	r := gin.New()
	NewHandler(store, newFakeQuotes(), zerolog.Nop()).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/portfolio/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	require.Len(t, msg.Positions, 1)
	assert.Equal(t, 100.0, msg.Stats.CashValue)

	mustAdd(t, store, metricsFor("AAPL", 180), 10, 150)
	msg = readMessage(t, conn)
	require.Len(t, msg.Positions, 2)
	assert.Equal(t, "AAPL", msg.Positions[1].Position.Symbol)
	assert.Equal(t, 1900.0, msg.Stats.TotalValue)

	conn.Close()
	assert.Eventually(t, func() bool { return store.hub.count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
