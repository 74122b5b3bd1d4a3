package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymhub/gymclient/internal/client/chat"
	"github.com/gymhub/gymclient/internal/client/client"
	"github.com/gymhub/gymclient/internal/client/directory"
	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/session"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
)

var ErrOwnerCannotStart = errors.New("gym owners reply from their gym's rooms")

// ChatService lists rooms and opens live room views.
type ChatService interface {
	Rooms(ctx context.Context, s *models.Session) (*directory.Listing, error)
	// Open connects to roomID for as long as ctx lives or until the room
	// is closed.
	Open(ctx context.Context, s *models.Session, roomID int64) (*chat.Room, error)
	// Start creates or fetches the room between s and gymID, then opens it.
	Start(ctx context.Context, s *models.Session, gymID int64) (*chat.Room, error)
}

type chatService struct {
	client    client.Client
	directory *directory.Directory
	dialer    chat.Dialer
	tokens    tokens.Store
	cfg       chat.Config
	logger    logging.Logger
}

func NewChatService(client client.Client, dialer chat.Dialer, store tokens.Store, cfg chat.Config, logger logging.Logger) ChatService {
	return &chatService{
		client:    client,
		directory: directory.New(client, logger),
		dialer:    dialer,
		tokens:    store,
		cfg:       cfg,
		logger:    logger,
	}
}

func (c *chatService) Rooms(ctx context.Context, s *models.Session) (*directory.Listing, error) {
	return c.directory.List(ctx, s)
}

func (c *chatService) Open(ctx context.Context, s *models.Session, roomID int64) (*chat.Room, error) {
	if s == nil {
		return nil, common.ErrNoSession
	}

	ch := chat.NewChannel(c.dialer, c.tokens, c.cfg, c.logger)
	room, err := chat.OpenRoom(ctx, c.client, ch, s, c.actorFor(s), roomID, c.logger)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("open room %d: %w", roomID, err)
	}
	return room, nil
}

func (c *chatService) actorFor(s *models.Session) chat.ActorFunc {
	return func(ctx context.Context, room models.ChatRoom) (session.Actor, error) {
		return session.ResolveActor(ctx, s, c.client, room)
	}
}

func (c *chatService) Start(ctx context.Context, s *models.Session, gymID int64) (*chat.Room, error) {
	if s == nil {
		return nil, common.ErrNoSession
	}
	if s.IsOwner() {
		return nil, ErrOwnerCannotStart
	}

	room, err := c.client.CreateChatRoom(ctx, s.UserID, gymID)
	if err != nil {
		return nil, fmt.Errorf("create room with gym %d: %w", gymID, err)
	}
	return c.Open(ctx, s, room.ID)
}
