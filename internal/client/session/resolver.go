// Package session derives the current identity from the stored access token
// and turns it into the actor used to tag outbound chat messages.
package session

import (
	"context"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/logging"
)

// Identity is the "who am I" endpoint.
type Identity interface {
	Me(ctx context.Context) (*models.Session, error)
}

type Resolver struct {
	tokens tokens.Store
	api    Identity
	logger logging.Logger
}

func NewResolver(store tokens.Store, api Identity, logger logging.Logger) *Resolver {
	return &Resolver{tokens: store, api: api, logger: logger}
}

// Resolve returns the current session. Without an access token it returns
// false and makes no network call. Lookup failures also return false; the
// HTTP client has already cleared tokens when the failure warranted it.
func (r *Resolver) Resolve(ctx context.Context) (*models.Session, bool) {
	if !r.tokens.Get(ctx).HasAccess() {
		return nil, false
	}

	s, err := r.api.Me(ctx)
	if err != nil {
		r.logger.Warn(ctx, "resolve session", "error", err)
		return nil, false
	}
	return s, true
}

// Follow resolves once, then again after every signal on changes, passing
// each result to fn. A signal that finds the pair as the previous resolve
// left it is skipped: it came from that resolve's own token refresh. Follow
// returns when ctx is done or changes is closed.
func (r *Resolver) Follow(ctx context.Context, changes <-chan struct{}, fn func(*models.Session, bool)) {
	fn(r.Resolve(ctx))
	last := r.tokens.Get(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if r.tokens.Get(ctx) == last {
				r.logger.Debug(ctx, "token change already seen")
				continue
			}
			fn(r.Resolve(ctx))
			last = r.tokens.Get(ctx)
		}
	}
}
