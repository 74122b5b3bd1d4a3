package cli

import (
	"context"
	"fmt"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
)

func (a *App) getStatus() string {
	s := a.currentSession()
	if s == nil {
		return ""
	}
	status := fmt.Sprintf("(%s %s", s.Name, s.Role)
	if n := a.currentInbox().UnreadCount(); n > 0 {
		status += fmt.Sprintf(", %d unread", n)
	}
	return status + ")"
}

// Root runs the interactive session until the user exits or ctx ends.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Gym client (type 'help' for commands)")

	a.startSessionWatcher(ctx)
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// startSessionWatcher re-resolves the identity whenever the token database
// changes, whether through this process (refresh, logout) or another one.
func (a *App) startSessionWatcher(ctx context.Context) {
	apply := func(s *models.Session, ok bool) {
		if !ok {
			s = nil
		}
		a.setSession(ctx, s)
	}

	changes, err := tokens.Watch(ctx, a.config.DatabasePath, a.logger)
	if err != nil {
		a.logger.Warn(ctx, "token watcher unavailable", "error", err)
		apply(a.resolver.Resolve(ctx))
		return
	}
	go a.resolver.Follow(ctx, changes, apply)
}
