// Package notify keeps the server-push notification stream for the current
// session and collects its events into an Inbox.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
)

type State int

const (
	Idle State = iota
	Connecting
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	}
	return "unknown"
}

var ErrAlreadyStarted = errors.New("notification channel already started")

// Channel is a single-use stream lifecycle: Start once, Close once.
type Channel struct {
	opener Opener
	tokens tokens.Store
	inbox  *Inbox
	event  string
	logger logging.Logger

	mu      sync.Mutex
	state   State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// NewChannel builds a channel that accepts events named event into inbox.
func NewChannel(opener Opener, store tokens.Store, inbox *Inbox, event string, logger logging.Logger) *Channel {
	return &Channel{
		opener: opener,
		tokens: store,
		inbox:  inbox,
		event:  event,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the stream has ended and the channel is Closed.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Start opens the stream in the background. Without an access token the
// channel stays Idle and common.ErrNoToken is returned.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.state == Closed {
		return ErrAlreadyStarted
	}

	pair := c.tokens.Get(ctx)
	if !pair.HasAccess() {
		return common.ErrNoToken
	}

	ctx, cancel := context.WithCancel(ctx)
	c.started = true
	c.cancel = cancel
	c.state = Connecting

	stream := c.opener.Open(pair.AccessToken)
	go c.run(ctx, stream)
	return nil
}

func (c *Channel) run(ctx context.Context, stream Stream) {
	defer c.once.Do(func() { close(c.done) })
	defer c.setState(Closed)

	err := stream.Subscribe(ctx, func() { c.setState(Streaming) }, func(name string, data []byte) {
		c.handle(ctx, name, data)
	})
	if err != nil && ctx.Err() == nil {
		c.logger.Warn(ctx, "notification stream closed", "error", err)
		return
	}
	c.logger.Debug(ctx, "notification stream ended")
}

func (c *Channel) handle(ctx context.Context, name string, data []byte) {
	if name != c.event {
		return
	}

	var n models.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		// Control messages such as the stream greeting are plain text.
		return
	}
	c.inbox.Push(n)
	c.logger.Debug(ctx, "notification received", "id", n.ID)
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state != Closed {
		c.state = s
	}
	c.mu.Unlock()
}

// Close stops the stream and waits for it to end. It is safe to call more
// than once and on a channel that never started.
func (c *Channel) Close() {
	c.mu.Lock()
	cancel, started := c.cancel, c.started
	c.state = Closed
	c.mu.Unlock()

	if !started {
		c.once.Do(func() { close(c.done) })
		return
	}
	cancel()
	<-c.done
}
