// Package directory lists the chat rooms visible to the current session,
// decorated with counterparty names and ordered most recent first.
package directory

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/session"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
)

// UnknownName labels a counterparty whose profile could not be loaded.
const UnknownName = "Unknown"

const lookupConcurrency = 8

type API interface {
	OwnedGyms(ctx context.Context) ([]models.Gym, error)
	ChatRooms(ctx context.Context, id int64, kind models.SenderType) ([]models.ChatRoom, error)
	User(ctx context.Context, id int64) (*models.UserProfile, error)
	Gym(ctx context.Context, id int64) (*models.Gym, error)
}

type Listing struct {
	Rooms       []models.ChatRoomSummary
	UnreadTotal int
}

type Directory struct {
	api    API
	logger logging.Logger
}

func New(api API, logger logging.Logger) *Directory {
	return &Directory{api: api, logger: logger}
}

// List fetches rooms for s. Owners see the rooms of all their gyms in gym
// order; everyone else sees rooms by their own user id.
func (d *Directory) List(ctx context.Context, s *models.Session) (*Listing, error) {
	if s == nil {
		return nil, common.ErrNoSession
	}

	var (
		rooms []models.ChatRoom
		actor session.Actor
		err   error
	)
	if s.IsOwner() {
		rooms, err = d.ownerRooms(ctx)
		actor = session.Owner{}
	} else {
		rooms, err = d.api.ChatRooms(ctx, s.UserID, models.SenderUser)
		actor = session.Member{UserID: s.UserID}
	}
	if err != nil {
		return nil, fmt.Errorf("list chat rooms: %w", err)
	}

	summaries := d.summarize(ctx, rooms, actor)
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].SortKey() > summaries[j].SortKey()
	})

	l := &Listing{Rooms: summaries}
	for _, r := range summaries {
		l.UnreadTotal += r.UnreadCount
	}
	return l, nil
}

func (d *Directory) ownerRooms(ctx context.Context) ([]models.ChatRoom, error) {
	gyms, err := d.api.OwnedGyms(ctx)
	if err != nil {
		return nil, err
	}

	perGym := make([][]models.ChatRoom, len(gyms))
	g, gctx := errgroup.WithContext(ctx)
	for i, gym := range gyms {
		i, gym := i, gym
		g.Go(func() error {
			rooms, err := d.api.ChatRooms(gctx, gym.ID, models.SenderGym)
			if err != nil {
				return fmt.Errorf("gym %d: %w", gym.ID, err)
			}
			perGym[i] = rooms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.ChatRoom
	for _, rooms := range perGym {
		all = append(all, rooms...)
	}
	return all, nil
}

// summarize resolves counterparty display data concurrently. Lookup errors
// degrade to UnknownName and an empty avatar.
func (d *Directory) summarize(ctx context.Context, rooms []models.ChatRoom, actor session.Actor) []models.ChatRoomSummary {
	out := make([]models.ChatRoomSummary, len(rooms))

	var g errgroup.Group
	g.SetLimit(lookupConcurrency)
	for i, room := range rooms {
		i, room := i, room
		id, kind := session.Counterparty(actor, room)
		out[i] = models.ChatRoomSummary{
			ChatRoomID:       room.ID,
			CounterpartyID:   id,
			CounterpartyRole: kind,
			CounterpartyName: UnknownName,
			LastMessage:      room.LastMessage,
			LastMessageTime:  room.LastMessageTime,
			UnreadCount:      room.UnreadCount,
			UpdatedAt:        room.UpdatedAt,
			CreatedAt:        room.CreatedAt,
		}
		g.Go(func() error {
			name, avatar, err := d.profile(ctx, id, kind)
			if err != nil {
				d.logger.Debug(ctx, "counterparty lookup failed", "room", room.ID, "id", id, "error", err)
				return nil
			}
			out[i].CounterpartyName = common.FirstNonEmpty(name, UnknownName)
			out[i].CounterpartyAvatar = avatar
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (d *Directory) profile(ctx context.Context, id int64, kind models.SenderType) (string, string, error) {
	if kind == models.SenderGym {
		gym, err := d.api.Gym(ctx, id)
		if err != nil {
			return "", "", err
		}
		return gym.Name, gym.ImageURL, nil
	}
	u, err := d.api.User(ctx, id)
	if err != nil {
		return "", "", err
	}
	return u.Name, u.ImageURL, nil
}

// Follow lists once and then again on every signal, without coalescing.
// It returns when ctx is done or signals is closed.
func (d *Directory) Follow(ctx context.Context, s *models.Session, signals <-chan struct{}, fn func(*Listing, error)) {
	fn(d.List(ctx, s))
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			fn(d.List(ctx, s))
		}
	}
}
