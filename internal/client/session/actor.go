package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/common"
)

// ErrGymUnresolved means an owner session has no gym to act for.
var ErrGymUnresolved = errors.New("owner gym not resolved")

// Actor is the identity that sends chat messages: Owner or Member.
type Actor interface {
	ID() int64
	SenderType() models.SenderType
	actor()
}

// Owner acts on behalf of a gym.
type Owner struct {
	GymID int64
}

func (o Owner) ID() int64 { return o.GymID }
func (Owner) SenderType() models.SenderType { return models.SenderGym }
func (Owner) actor() {}

// Member is any non-owner user, pending owners included.
type Member struct {
	UserID int64
}

func (m Member) ID() int64 { return m.UserID }
func (Member) SenderType() models.SenderType { return models.SenderUser }
func (Member) actor() {}

type GymLister interface {
	OwnedGyms(ctx context.Context) ([]models.Gym, error)
}

// ResolveActor maps a session to its actor in room. Owners act as the gym
// the room belongs to, which must be one of their own.
func ResolveActor(ctx context.Context, s *models.Session, gyms GymLister, room models.ChatRoom) (Actor, error) {
	if s == nil {
		return nil, common.ErrNoSession
	}
	if !s.IsOwner() {
		return Member{UserID: s.UserID}, nil
	}

	owned, err := gyms.OwnedGyms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGymUnresolved, err)
	}
	for _, g := range owned {
		if g.ID == room.GymID {
			return Owner{GymID: g.ID}, nil
		}
	}
	return nil, fmt.Errorf("%w: gym %d is not owned", ErrGymUnresolved, room.GymID)
}

// Counterparty returns the other side of room as seen by a.
func Counterparty(a Actor, room models.ChatRoom) (int64, models.SenderType) {
	switch a.(type) {
	case Owner:
		return room.UserID, models.SenderUser
	default:
		return room.GymID, models.SenderGym
	}
}
