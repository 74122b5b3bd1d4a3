// Package chat is the realtime chat transport: a STOMP session over a
// WebSocket, subscribed to the shared broadcast destination, plus the Room
// view that merges history with live messages.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
)

var (
	ErrNotConnected = errors.New("chat is not connected")
	ErrNotReady     = errors.New("chat room or identity not resolved")
	ErrEmptyMessage = errors.New("message is empty")
	ErrClosed       = errors.New("chat channel closed")
)

// ErrBroker is returned for STOMP ERROR frames.
type ErrBroker struct {
	Message string
}

func (e *ErrBroker) Error() string {
	return "broker error: " + e.Message
}

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "unknown"
}

type Config struct {
	// Host is sent in the CONNECT frame.
	Host                 string
	SubscribeDestination string
	PublishDestination   string
	ReconnectDelay       time.Duration
}

// Outbound is the JSON body of a published message.
type Outbound struct {
	Message    string            `json:"message"`
	SenderID   int64             `json:"senderId"`
	SenderType models.SenderType `json:"senderType"`
	ReceiverID int64             `json:"receiverId"`
}

// Channel owns one supervised STOMP session. After Start it reconnects every
// ReconnectDelay until Close or the start context ends.
type Channel struct {
	dialer Dialer
	tokens tokens.Store
	cfg    Config
	logger logging.Logger

	mu        sync.Mutex
	state     State
	conn      Conn
	onMessage func(models.ChatMessage)
	started   bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewChannel(dialer Dialer, store tokens.Store, cfg Config, logger logging.Logger) *Channel {
	return &Channel{
		dialer: dialer,
		tokens: store,
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnMessage sets the handler for inbound messages. Frames from every room
// on the broadcast destination are delivered.
func (c *Channel) OnMessage(fn func(models.ChatMessage)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	go c.supervise(ctx)
	return nil
}

func (c *Channel) supervise(ctx context.Context) {
	defer close(c.done)

	for {
		err := c.session(ctx)
		c.setState(Disconnected)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn(ctx, "chat connection lost", "error", err, "retry_in", c.cfg.ReconnectDelay)

		t := time.NewTimer(c.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// session runs one connect, subscribe and read cycle. It returns when the
// transport fails or ctx ends.
func (c *Channel) session(ctx context.Context) error {
	c.setState(Connecting)

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		_ = conn.Close()
	}()

	if err := c.handshake(ctx, conn); err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.state = Connected
	c.mu.Unlock()
	c.logger.Info(ctx, "chat connected", "destination", c.cfg.SubscribeDestination)

	for {
		f, err := conn.ReadFrame()
		if err != nil {
			return err
		}
		switch f.Command {
		case frame.MESSAGE:
			c.deliver(ctx, f.Body)
		case frame.ERROR:
			return &ErrBroker{Message: common.FirstNonEmpty(f.Header.Get(frame.Message), string(f.Body))}
		}
	}
}

func (c *Channel) handshake(ctx context.Context, conn Conn) error {
	connect := frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.2",
		frame.Host, c.cfg.Host,
		frame.HeartBeat, "0,0",
	)
	if pair := c.tokens.Get(ctx); pair.HasAccess() {
		connect.Header.Add(common.AuthorizationHeaderName, common.BearerValue(pair.AccessToken))
	}
	if err := conn.WriteFrame(connect); err != nil {
		return fmt.Errorf("send CONNECT: %w", err)
	}

	f, err := conn.ReadFrame()
	if err != nil {
		return fmt.Errorf("await CONNECTED: %w", err)
	}
	switch f.Command {
	case frame.CONNECTED:
	case frame.ERROR:
		return &ErrBroker{Message: common.FirstNonEmpty(f.Header.Get(frame.Message), string(f.Body))}
	default:
		return fmt.Errorf("unexpected %s frame during handshake", f.Command)
	}

	sub := frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-"+uuid.NewString(),
		frame.Destination, c.cfg.SubscribeDestination,
		frame.Ack, "auto",
	)
	if err := conn.WriteFrame(sub); err != nil {
		return fmt.Errorf("send SUBSCRIBE: %w", err)
	}
	return nil
}

func (c *Channel) deliver(ctx context.Context, body []byte) {
	var msg models.ChatMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.Warn(ctx, "drop malformed chat frame", "error", err)
		return
	}

	c.mu.Lock()
	fn := c.onMessage
	c.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// Publish sends m to the application destination. It fails fast with
// ErrNotConnected when no session is up; nothing is queued.
func (c *Channel) Publish(ctx context.Context, m Outbound) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()
	if state != Connected || conn == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	send := frame.New(frame.SEND,
		frame.Destination, c.cfg.PublishDestination,
		frame.ContentType, "application/json",
	)
	send.Body = body

	if err := conn.WriteFrame(send); err != nil {
		c.logger.Warn(ctx, "publish failed", "error", err)
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Close tears the session down and stops reconnecting. It is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	started, cancel := c.started, c.cancel
	c.mu.Unlock()

	if started {
		cancel()
		<-c.done
	}
	c.setState(Disconnected)
}
