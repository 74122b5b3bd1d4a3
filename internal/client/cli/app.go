package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"

	"github.com/gymhub/gymclient/internal/client/chat"
	"github.com/gymhub/gymclient/internal/client/client"
	"github.com/gymhub/gymclient/internal/client/config"
	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/notify"
	"github.com/gymhub/gymclient/internal/client/services"
	"github.com/gymhub/gymclient/internal/client/session"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/dbx"
	"github.com/gymhub/gymclient/internal/logging"
)

var errNotLoggedIn = errors.New("not logged in; use 'login' or 'token'")

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	tokens      tokens.Store
	resolver    *session.Resolver
	authService services.AuthService
	chatService services.ChatService
	opener      notify.Opener
	reader      *bufio.Reader
	out         io.Writer

	// sessionMu serializes setSession; mu guards the fields below.
	sessionMu sync.Mutex
	mu        sync.Mutex
	session   *models.Session
	inbox     *notify.Inbox
	notifier  *notify.Channel
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := dbx.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open token database: %w", err)
	}

	store := tokens.NewSQLiteStore(db, logger)
	apiClient := client.New(c.BaseURL, store, client.WithLogger(logger))
	resolver := session.NewResolver(store, apiClient, logger)

	dialer, err := chat.NewWSDialer(c.BaseURL, c.ChatEndpoint)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	chatCfg := chat.Config{
		Host:                 hostOf(c.BaseURL),
		SubscribeDestination: c.SubscribeDestination,
		PublishDestination:   c.PublishDestination,
		ReconnectDelay:       c.ReconnectDelay,
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		tokens:      store,
		resolver:    resolver,
		authService: services.NewAuthService(apiClient, store, resolver),
		chatService: services.NewChatService(apiClient, dialer, store, chatCfg, logger),
		opener:      notify.NewSSEOpener(c.BaseURL, c.NotifyPath, nil),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		inbox:       notify.NewInbox(),
	}, nil
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close stops the notification stream and releases the database.
func (a *App) Close() {
	a.mu.Lock()
	n := a.notifier
	a.notifier = nil
	a.mu.Unlock()
	if n != nil {
		n.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) currentSession() *models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) currentInbox() *notify.Inbox {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inbox
}

func (a *App) isLoggedIn() bool {
	return a.currentSession() != nil
}

func (a *App) requireSession() (*models.Session, error) {
	s := a.currentSession()
	if s == nil {
		return nil, errNotLoggedIn
	}
	return s, nil
}

// setSession records the resolved identity and keeps the notification
// stream in step with it: closed without a session, restarted for a new
// user or after the previous stream ended.
func (a *App) setSession(ctx context.Context, s *models.Session) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	a.mu.Lock()
	prev, old := a.session, a.notifier
	a.session = s
	sameUser := prev != nil && s != nil && prev.UserID == s.UserID
	if !sameUser {
		a.inbox = notify.NewInbox()
		a.inbox.OnPush(a.printNotification)
	}
	inbox := a.inbox
	a.mu.Unlock()

	if sameUser && old != nil && old.State() != notify.Closed {
		return
	}
	if old != nil {
		old.Close()
	}

	var ch *notify.Channel
	if s != nil {
		ch = notify.NewChannel(a.opener, a.tokens, inbox, a.config.NotifyEvent, a.logger)
		if err := ch.Start(ctx); err != nil {
			a.logger.Warn(ctx, "notifications not started", "error", err)
			ch = nil
		}
	}

	a.mu.Lock()
	a.notifier = ch
	a.mu.Unlock()
}

func (a *App) notifierState() notify.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.notifier == nil {
		return notify.Idle
	}
	return a.notifier.State()
}

func (a *App) printNotification(n models.Notification) {
	fmt.Fprintf(a.out, "\n[notification #%d] %s\n", n.ID, n.Content)
}
