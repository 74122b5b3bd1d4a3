package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymhub/gymclient/internal/client/chat"
	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/session"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
)

type refusingDialer struct{}

func (refusingDialer) Dial(context.Context) (chat.Conn, error) {
	return nil, errors.New("connection refused")
}

func newChat(f *fakeClient) ChatService {
	cfg := chat.Config{ReconnectDelay: time.Hour}
	return NewChatService(f, refusingDialer{}, tokens.NewMemoryStore(), cfg, logging.Discard())
}

func TestChatService_Start(t *testing.T) {
	f := &fakeClient{}
	svc := newChat(f)
	ctx := context.Background()

	room, err := svc.Start(ctx, &models.Session{UserID: 3, Role: models.RoleEndUser}, 12)
	require.NoError(t, err)
	defer room.Close()

	assert.Equal(t, int64(3), f.CreatedUser)
	assert.Equal(t, int64(12), f.CreatedGym)
	assert.Equal(t, int64(112), room.Info().ID)
	assert.Equal(t, session.Member{UserID: 3}, room.Actor())

	_, err = svc.Start(ctx, &models.Session{UserID: 9, Role: models.RoleOwner}, 12)
	assert.ErrorIs(t, err, ErrOwnerCannotStart)

	_, err = svc.Start(ctx, nil, 12)
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestChatService_OpenAsOwner(t *testing.T) {
	f := &fakeClient{
		Gyms:  []models.Gym{{ID: 12}},
		Rooms: map[int64]models.ChatRoom{5: {ID: 5, UserID: 3, GymID: 12}},
	}
	svc := newChat(f)

	room, err := svc.Open(context.Background(), &models.Session{UserID: 9, Role: models.RoleOwner}, 5)
	require.NoError(t, err)
	defer room.Close()
	assert.Equal(t, session.Owner{GymID: 12}, room.Actor())

	// Not connected, so nothing is sent regardless of content.
	assert.ErrorIs(t, room.Send(context.Background(), "hi"), chat.ErrNotConnected)
}

func TestChatService_OpenOwnerWithoutGymIsReadOnly(t *testing.T) {
	f := &fakeClient{
		GymsErr: errors.New("down"),
		Rooms:   map[int64]models.ChatRoom{5: {ID: 5, UserID: 3, GymID: 12}},
	}
	svc := newChat(f)

	room, err := svc.Open(context.Background(), &models.Session{UserID: 9, Role: models.RoleOwner}, 5)
	require.NoError(t, err)
	defer room.Close()
	assert.Nil(t, room.Actor())
}

func TestChatService_OpenUnknownRoom(t *testing.T) {
	svc := newChat(&fakeClient{})

	_, err := svc.Open(context.Background(), &models.Session{UserID: 3}, 77)
	assert.Error(t, err)
}

func TestChatService_Rooms(t *testing.T) {
	f := &fakeClient{Rooms: map[int64]models.ChatRoom{5: {ID: 5, UserID: 3, GymID: 12, UnreadCount: 2}}}
	l, err := newChat(f).Rooms(context.Background(), &models.Session{UserID: 3})
	require.NoError(t, err)
	require.Len(t, l.Rooms, 1)
	assert.Equal(t, "gym", l.Rooms[0].CounterpartyName)
	assert.Equal(t, 2, l.UnreadTotal)
}

func TestChatService_OpenAsOwnerOfSecondGym(t *testing.T) {
	f := &fakeClient{
		Gyms:  []models.Gym{{ID: 12}, {ID: 13}},
		Rooms: map[int64]models.ChatRoom{7: {ID: 7, UserID: 3, GymID: 13}},
	}
	svc := newChat(f)

	room, err := svc.Open(context.Background(), &models.Session{UserID: 9, Role: models.RoleOwner}, 7)
	require.NoError(t, err)
	defer room.Close()

	assert.Equal(t, session.Owner{GymID: 13}, room.Actor())
	assert.True(t, room.IsMine(models.ChatMessage{SenderID: 13, SenderType: models.SenderGym}))
	assert.False(t, room.IsMine(models.ChatMessage{SenderID: 12, SenderType: models.SenderGym}))
}

func TestChatService_OpenOtherOwnersRoomIsReadOnly(t *testing.T) {
	f := &fakeClient{
		Gyms:  []models.Gym{{ID: 12}},
		Rooms: map[int64]models.ChatRoom{7: {ID: 7, UserID: 3, GymID: 13}},
	}
	svc := newChat(f)

	room, err := svc.Open(context.Background(), &models.Session{UserID: 9, Role: models.RoleOwner}, 7)
	require.NoError(t, err)
	defer room.Close()
	assert.Nil(t, room.Actor())
}
