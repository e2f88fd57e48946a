// Package stream follows the portfolio stream of a running portfolio service.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ZhouDavid/stock-folio/portfolio-service/internal/portfolio"
)

// SnapshotHandler is called for every snapshot received
type SnapshotHandler func(portfolio.StreamMessage)

// Watcher handles the websocket connection to /portfolio/stream
type Watcher struct {
	mu   sync.Mutex
	conn *websocket.Conn

	url        string
	handlers   []SnapshotHandler
	log        zerolog.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

// StreamURL turns the HTTP base address of the portfolio service into its stream URL.
func StreamURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid portfolio address %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path += "/portfolio/stream"
	return u.String(), nil
}

// NewWatcher creates a watcher for the stream at url
func NewWatcher(url string, log zerolog.Logger) *Watcher {
	return &Watcher{
		url:        url,
		handlers:   make([]SnapshotHandler, 0),
		log:        log,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// AddHandler adds a new snapshot handler
func (w *Watcher) AddHandler(handler SnapshotHandler) {
	w.handlers = append(w.handlers, handler)
}

// Connect dials the stream
func (w *Watcher) Connect(ctx context.Context) error {
	w.log.Debug().Str("url", w.url).Msg("Connecting to portfolio stream")
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("error connecting to portfolio stream: %w, status: %s", err, resp.Status)
		}
		return fmt.Errorf("error connecting to portfolio stream: %w", err)
	}

	w.mu.Lock()
	w.conn = c
	w.mu.Unlock()
	return nil
}

// Stream reads snapshots until ctx is done, reconnecting with exponential
// backoff whenever the connection drops. Connect must have succeeded first.
func (w *Watcher) Stream(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { w.Close() })
	defer stop()

	backoff := w.backoff
	for {
		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()

		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn().Err(err).Msg("Portfolio stream dropped, reconnecting")
			conn.Close()

			for {
				w.log.Debug().Dur("backoff", backoff).Msg("Waiting before reconnecting")
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return ctx.Err()
				}

				backoff *= 2
				if backoff > w.maxBackoff {
					backoff = w.maxBackoff
				}

				if err := w.Connect(ctx); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					w.log.Warn().Err(err).Msg("Reconnection failed")
					continue
				}

				if ctx.Err() != nil {
					w.Close()
					return ctx.Err()
				}
				w.log.Info().Msg("Reconnected to portfolio stream")
				backoff = w.backoff
				break
			}
			continue
		}

		var msg portfolio.StreamMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			w.log.Warn().Err(err).Msg("Error parsing stream message")
			continue
		}
		if msg.Type != "snapshot" {
			continue
		}
		for _, handler := range w.handlers {
			handler(msg)
		}
	}
}

// Close closes the websocket connection
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
