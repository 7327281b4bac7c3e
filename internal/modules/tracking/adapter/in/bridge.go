package in

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"scormtrack/internal/platform/id"
)

const (
	bridgeSendBuffer   = 64
	bridgeWriteTimeout = 5 * time.Second
)

// Inbound receives raw host messages. MessageHandler is the usual one.
type Inbound interface {
	Handle(ctx context.Context, raw []byte) error
}

// Bridge carries host messages over WebSocket: inbound frames go to the
// message handler, outbound messages are broadcast to every client.
type Bridge struct {
	handler Inbound
	log     zerolog.Logger
	rps     float64

	mu      sync.Mutex
	clients map[string]*bridgeClient
}

type bridgeClient struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

func NewBridge(handler Inbound, log zerolog.Logger, inboundRPS float64) *Bridge {
	if inboundRPS <= 0 {
		inboundRPS = 10
	}
	return &Bridge{
		handler: handler,
		log:     log,
		rps:     inboundRPS,
		clients: map[string]*bridgeClient{},
	}
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		b.log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	c := &bridgeClient{
		id:      id.RandomHex{}.New(),
		conn:    conn,
		send:    make(chan []byte, bridgeSendBuffer),
		limiter: rate.NewLimiter(rate.Limit(b.rps), int(b.rps)+1),
	}
	b.add(c)
	defer b.remove(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go b.writeLoop(ctx, c)
	b.readLoop(ctx, c)
}

func (b *Bridge) readLoop(ctx context.Context, c *bridgeClient) {
	log := b.log.With().Str("client", c.id).Logger()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Msg("bridge read ended")
			}
			return
		}
		if !c.limiter.Allow() {
			log.Warn().Msg("dropping inbound message over rate limit")
			continue
		}
		if err := b.handler.Handle(ctx, data); err != nil {
			log.Warn().Err(err).Msg("inbound message rejected")
		}
	}
}

func (b *Bridge) writeLoop(ctx context.Context, c *bridgeClient) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, bridgeWriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				b.log.Debug().Err(err).Str("client", c.id).Msg("bridge write failed")
				return
			}
		}
	}
}

// Broadcast queues payload for every client. Slow clients lose messages
// rather than blocking the engine.
func (b *Bridge) Broadcast(payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.clients {
		select {
		case c.send <- payload:
		default:
			b.log.Warn().Str("client", c.id).Msg("bridge client too slow, dropping message")
		}
	}
	return nil
}

func (b *Bridge) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Bridge) add(c *bridgeClient) {
	b.mu.Lock()
	b.clients[c.id] = c
	b.mu.Unlock()
	b.log.Info().Str("client", c.id).Msg("bridge client connected")
}

func (b *Bridge) remove(c *bridgeClient) {
	b.mu.Lock()
	delete(b.clients, c.id)
	b.mu.Unlock()
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
	b.log.Info().Str("client", c.id).Msg("bridge client disconnected")
}
