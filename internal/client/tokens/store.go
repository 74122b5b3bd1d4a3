// Package tokens is the single source of truth for the access/refresh token
// pair. The HTTP client reads it on every call; login, refresh and logout
// flows write it. Nothing in this package talks to the network.
package tokens

import (
	"context"
	"strings"
	"sync"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/common"
)

// Store holds the current token pair.
//
// Get never fails: storage problems are logged by the implementation and
// surface as an empty pair. Set strips scheme prefixes; an empty refresh
// argument keeps the stored refresh token. Clear removes both tokens.
type Store interface {
	Get(ctx context.Context) models.TokenPair
	Set(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

// Normalize strips a leading "Bearer" scheme label (any case) and surrounding
// whitespace from a token as received from the backend.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > len(common.BearerScheme) && strings.EqualFold(token[:len(common.BearerScheme)], common.BearerScheme) {
		rest := token[len(common.BearerScheme):]
		if rest != strings.TrimLeft(rest, " \t") {
			token = strings.TrimSpace(rest)
		}
	}
	return token
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pair models.TokenPair
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) models.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

func (s *MemoryStore) Set(_ context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair.AccessToken = Normalize(accessToken)
	if r := Normalize(refreshToken); r != "" {
		s.pair.RefreshToken = r
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = models.TokenPair{}
	return nil
}
