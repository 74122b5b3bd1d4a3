package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/session"
	"github.com/gymhub/gymclient/internal/logging"
)

// ErrGymUnresolved is returned when an owner has no gym to send as.
var ErrGymUnresolved = session.ErrGymUnresolved

// History loads room metadata and past messages.
type History interface {
	ChatRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error)
	ChatMessages(ctx context.Context, roomID int64) ([]models.ChatMessage, error)
}

// Room is an open chat view. Messages are kept in arrival order: history
// first, then live frames as the channel delivers them.
type Room struct {
	info    models.ChatRoom
	sess    *models.Session
	actor   session.Actor
	channel *Channel
	logger  logging.Logger

	mu        sync.Mutex
	messages  []models.ChatMessage
	onMessage func(models.ChatMessage)
}

// ActorFunc picks who sends in room.
type ActorFunc func(ctx context.Context, room models.ChatRoom) (session.Actor, error)

// OpenRoom loads the room, resolves the actor for it and starts ch. Without a
// room id or a session no connection is attempted. When actorFor reports
// ErrGymUnresolved the room opens read-only with a nil actor.
func OpenRoom(ctx context.Context, api History, ch *Channel, sess *models.Session, actorFor ActorFunc, roomID int64, logger logging.Logger) (*Room, error) {
	if roomID <= 0 || sess == nil {
		return nil, ErrNotReady
	}

	info, err := api.ChatRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	logger = logger.With("room", roomID)
	actor, err := actorFor(ctx, *info)
	if err != nil {
		if !errors.Is(err, ErrGymUnresolved) {
			return nil, err
		}
		logger.Warn(ctx, "opening room read-only", "error", err)
	}
	history, err := api.ChatMessages(ctx, roomID)
	if err != nil {
		return nil, err
	}

	r := &Room{
		info:     *info,
		sess:     sess,
		actor:    actor,
		channel:  ch,
		logger:   logger,
		messages: history,
	}
	ch.OnMessage(r.receive)
	if err := ch.Start(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Room) Info() models.ChatRoom {
	return r.info
}

func (r *Room) Actor() session.Actor {
	return r.actor
}

func (r *Room) State() State {
	return r.channel.State()
}

func (r *Room) Messages() []models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// OnMessage registers fn for live messages appended after it is set.
func (r *Room) OnMessage(fn func(models.ChatMessage)) {
	r.mu.Lock()
	r.onMessage = fn
	r.mu.Unlock()
}

// Follow hands every message so far to fn, then each live message as it
// arrives, so nothing delivered in between is missed or repeated.
func (r *Room) Follow(fn func(models.ChatMessage)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		fn(m)
	}
	r.onMessage = fn
}

func (r *Room) receive(m models.ChatMessage) {
	r.mu.Lock()
	r.messages = append(r.messages, m)
	fn := r.onMessage
	r.mu.Unlock()

	if fn != nil {
		fn(m)
	}
}

// IsMine reports whether m was sent by the room's actor.
func (r *Room) IsMine(m models.ChatMessage) bool {
	return IsMine(m, r.actor)
}

// Send publishes text as the room's actor. Every precondition failure is
// reported without touching the transport.
func (r *Room) Send(ctx context.Context, text string) error {
	if r.channel.State() != Connected {
		return ErrNotConnected
	}
	if r.sess == nil || r.info.ID <= 0 {
		return ErrNotReady
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if r.actor == nil {
		if r.sess.IsOwner() {
			return ErrGymUnresolved
		}
		return ErrNotReady
	}

	receiver, _ := session.Counterparty(r.actor, r.info)
	return r.channel.Publish(ctx, Outbound{
		Message:    text,
		SenderID:   r.actor.ID(),
		SenderType: r.actor.SenderType(),
		ReceiverID: receiver,
	})
}

// Close disconnects the room's channel. It is idempotent.
func (r *Room) Close() {
	r.channel.Close()
}

// IsMine compares sender type and id against the actor.
func IsMine(m models.ChatMessage, a session.Actor) bool {
	if a == nil {
		return false
	}
	return m.SenderType == a.SenderType() && m.SenderID == a.ID()
}
