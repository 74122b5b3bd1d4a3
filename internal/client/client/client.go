package client

import (
	"context"

	"github.com/gymhub/gymclient/internal/client/models"
)

// Client is the REST surface used by the session, directory and chat layers.
type Client interface {
	Login(ctx context.Context, email, password string) error
	Me(ctx context.Context) (*models.Session, error)
	User(ctx context.Context, id int64) (*models.UserProfile, error)
	Gym(ctx context.Context, id int64) (*models.Gym, error)
	OwnedGyms(ctx context.Context) ([]models.Gym, error)
	ChatRooms(ctx context.Context, id int64, kind models.SenderType) ([]models.ChatRoom, error)
	CreateChatRoom(ctx context.Context, userID, gymID int64) (*models.ChatRoom, error)
	ChatRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error)
	ChatMessages(ctx context.Context, roomID int64) ([]models.ChatMessage, error)
}

var _ Client = (*HTTPClient)(nil)
