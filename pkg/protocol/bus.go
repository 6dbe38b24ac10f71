package protocol

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

type BusConfig struct {
	Shard   string
	URL     string
	Reconn  time.Duration
	Timeout time.Duration
	// Handle receives frames addressed to Shard or to everyone.
	Handle func(*Message)
}

// Bus is a websocket connection to the hub that reconnects on close.
type Bus struct {
	cfg    BusConfig
	dialer *ws.Dialer

	mu   sync.Mutex
	conn *ws.Conn
}

func Dial(ctx context.Context, cfg BusConfig) (*Bus, error) {
	if cfg.Reconn <= 0 {
		cfg.Reconn = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	b := &Bus{
		cfg:    cfg,
		dialer: &ws.Dialer{HandshakeTimeout: cfg.Timeout},
	}

	conn, _, err := b.dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial bus %s: %w", cfg.URL, err)
	}
	b.conn = conn

	log.Debug("Connected to bus", "url", cfg.URL, "shard", cfg.Shard)
	return b, nil
}

// Publish broadcasts VERB:NOUN:ARGS from this shard.
func (b *Bus) Publish(verb, noun string, args ...string) error {
	return b.Send(&Message{To: Broadcast, Verb: verb, Noun: noun, Args: args})
}

// Send stamps m with this shard and writes it.
func (b *Bus) Send(m *Message) error {
	m.From = b.cfg.Shard

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return errors.New("bus not connected")
	}
	_ = b.conn.SetWriteDeadline(time.Now().Add(b.cfg.Timeout))
	if err := b.conn.WriteMessage(ws.TextMessage, []byte(m.String())); err != nil {
		return fmt.Errorf("write bus frame: %w", err)
	}
	log.Debug("Bus frame sent", "msg", m.String())
	return nil
}

// Run reads frames until ctx is done, reconnecting when the hub drops.
func (b *Bus) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.Close()
	}()

	for ctx.Err() == nil {
		conn := b.current()
		if conn == nil {
			b.reconnect(ctx)
			continue
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("Bus read failed, reconnecting", "url", b.cfg.URL, "err", err)
			b.reconnect(ctx)
			continue
		}

		if !b.addressed(string(raw)) {
			continue
		}
		msg, err := Parse(string(raw))
		if err != nil {
			log.Warn("Failed to parse bus frame", "msg", string(raw), "err", err)
			continue
		}
		if b.cfg.Handle != nil {
			b.cfg.Handle(msg)
		}
	}
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *Bus) addressed(frame string) bool {
	to, _, _ := strings.Cut(frame, ":")
	return to == b.cfg.Shard || to == Broadcast
}

func (b *Bus) current() *ws.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn
}

func (b *Bus) reconnect(ctx context.Context) {
	b.mu.Lock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	b.mu.Unlock()

	for ctx.Err() == nil {
		conn, _, err := b.dialer.DialContext(ctx, b.cfg.URL, nil)
		if err == nil {
			b.mu.Lock()
			b.conn = conn
			b.mu.Unlock()
			log.Info("Reconnected to bus", "url", b.cfg.URL)
			return
		}

		select {
		case <-ctx.Done():
		case <-time.After(b.cfg.Reconn):
		}
	}
}
