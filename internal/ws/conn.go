package ws

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/metrics"
)

var errClosed = errors.New("connection closed")

// Conn wraps one websocket with a buffered outbound queue. It implements
// hub.Sender: Send never blocks the hub, and a full queue drops the frame
// (best-effort delivery per connection).
type Conn struct {
	id     string
	ws     *websocket.Conn
	out    chan []byte
	closed atomic.Bool
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a WS connection with a fresh connection id
func NewConn(ws *websocket.Conn, buffer int) *Conn {
	return &Conn{
		id:  uuid.NewString(),
		ws:  ws,
		out: make(chan []byte, buffer),
	}
}

func (c *Conn) ID() string { return c.id }

// Alive reports whether the connection can still accept frames.
func (c *Conn) Alive() bool { return !c.closed.Load() }

// Send queues one frame for the write loop. Returns an error once the
// connection is closed; a full queue drops the frame instead of blocking.
func (c *Conn) Send(b []byte) error {
	if c.closed.Load() {
		return errClosed
	}
	select {
	case c.out <- b:
		return nil
	default:
		metrics.FramesDropped.Inc()
		return nil
	}
}

// Read blocks until it receives a text/binary message
// Returns false if connection is closed
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			c.closed.Store(true)
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return []byte(data), true
		}
	}
}

// WriteLoop sends outbound messages + periodic pings
// Marks the connection dead on the first write error
func (c *Conn) WriteLoop(ctx context.Context) {
	p := 20 * time.Second
	t := time.NewTicker(p)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			if err := c.ws.Write(ctx, websocket.MessageText, b); err != nil {
				c.closed.Store(true)
				return
			}
		case <-t.C:
			if err := c.ws.Ping(ctx); err != nil {
				c.closed.Store(true)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the WS connection normally
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}
