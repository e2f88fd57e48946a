package portfolio

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// StreamMessage is one snapshot pushed over the stream
type StreamMessage struct {
	Type string `json:"type"`
	View
}

// Stream upgrades to a websocket and pushes the current portfolio, then every
// later snapshot, until the client goes away.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to upgrade stream connection")
		return
	}
	defer conn.Close()

	sub := h.store.Subscribe()
	defer sub.Close()

	log := h.log.With().Str("subscriber", sub.ID).Logger()
	log.Debug().Msg("Stream subscriber connected")

	// Reads only serve to notice the client closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(StreamMessage{Type: "snapshot", View: NewView(snapshot)}); err != nil {
				log.Debug().Err(err).Msg("Stream write failed")
				return
			}
		case <-gone:
			log.Debug().Msg("Stream subscriber disconnected")
			return
		case <-c.Request.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		}
	}
}
