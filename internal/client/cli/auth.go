package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for email and password and authenticates. The password is
// wiped by the auth service once sent.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.setSession(ctx, s)
	a.greet(s)
	return nil
}

// Token accepts a pair handed over by a social-login redirect:
// token <access> [refresh].
func (a *App) Token(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("token <accessToken> [refreshToken]")
	}
	refresh := ""
	if len(args) > 1 {
		refresh = args[1]
	}

	s, err := a.authService.AcceptRedirect(ctx, args[0], refresh)
	if err != nil {
		return err
	}
	a.setSession(ctx, s)
	a.greet(s)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setSession(ctx, nil)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	s, err := a.authService.Whoami(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "id:       %d\nname:     %s\nrole:     %s\nprovider: %s\n", s.UserID, s.Name, s.Role, s.AuthProvider)
	return nil
}

// Status prints local token and stream state without contacting the API.
func (a *App) Status(ctx context.Context) error {
	st := a.authService.Status(ctx)
	fmt.Fprintf(a.out, "access token:  %s\n", presence(st.HasAccess))
	fmt.Fprintf(a.out, "refresh token: %s\n", presence(st.HasRefresh))
	if st.HasAccess && st.ClaimsErr == nil {
		fmt.Fprintf(a.out, "subject:       %s\n", st.Claims.Subject)
		if !st.Claims.ExpiresAt.IsZero() {
			fmt.Fprintf(a.out, "expires:       %s\n", st.Claims.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	if err := st.Check(time.Now()); err != nil {
		fmt.Fprintf(a.out, "token check:   %v\n", err)
	}
	fmt.Fprintf(a.out, "notifications: %s (%d unread)\n", a.notifierState(), a.currentInbox().UnreadCount())
	return nil
}

func (a *App) greet(s *models.Session) {
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", common.FirstNonEmpty(s.Name, fmt.Sprint("user ", s.UserID)), s.Role)
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "absent"
}
