package gateway

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/samkari/roadmap-service/types"
)

const (
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum event size allowed from the gateway
	maxEventSize = 512 * 1024

	reconnectBase = 2 * time.Second
	reconnectMax  = 60 * time.Second
)

// EventHandler consumes a decoded gateway message event.
type EventHandler func(ctx context.Context, ev *types.MessageEvent)

// Consumer maintains a websocket subscription to the gateway's event
// stream and feeds message events to the handler. It reconnects with
// exponential backoff until the context is cancelled.
type Consumer struct {
	URL     string
	Handler EventHandler
}

func NewConsumer(url string, handler EventHandler) *Consumer {
	return &Consumer{URL: url, Handler: handler}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	backoff := reconnectBase

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
		if err != nil {
			log.Printf("Gateway: connect failed: %v (retrying in %s)", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, reconnectMax)
			continue
		}

		log.Printf("Gateway: connected to event stream at %s", c.URL)
		backoff = reconnectBase

		c.readLoop(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectBase):
		}
	}
}

func (c *Consumer) readLoop(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxEventSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Keepalive pings; the read deadline catches a dead peer.
	pingDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-pingDone:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	defer close(pingDone)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Gateway: stream error: %v", err)
			}
			return
		}

		var ev types.MessageEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("Gateway: skipping malformed event: %v", err)
			continue
		}
		if ev.Type != "" && ev.Type != "message" {
			continue
		}

		c.Handler(ctx, &ev)
	}
}
