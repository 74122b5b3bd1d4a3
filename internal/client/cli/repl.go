package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gymhub/gymclient/internal/client/client"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Token(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Rooms(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	Start(ctx context.Context, args []string) error
	Notifications(ctx context.Context) error
	Read(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, token, status, notifications, exit"
	helpLoggedIn  = "Available commands: whoami, status, rooms, open <roomId>, start <gymId>, notifications, read <id>, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the gym client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                   : show available commands
//	  - login                  : authenticate with email and password
//	  - token <access> [ref]   : accept tokens from a social-login redirect
//	  - status                 : local token diagnostics
//	  - exit | quit            : leave the program
//
//	Logged in, additionally:
//	  - whoami                 : resolve the current identity
//	  - rooms                  : list chat rooms
//	  - open <roomId>          : enter a room; /leave returns
//	  - start <gymId>          : open the room with a gym
//	  - notifications          : list received notifications
//	  - read <id>              : mark a notification read
//	  - logout                 : forget the stored tokens
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gym %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}
		case "login":
			err = a.Login(ctx)
		case "token":
			err = a.Token(ctx, args)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.Whoami(ctx)
		case "status":
			err = a.Status(ctx)
		case "rooms":
			err = a.Rooms(ctx)
		case "open":
			err = a.Open(ctx, args)
		case "start":
			err = a.Start(ctx, args)
		case "notifications", "n":
			err = a.Notifications(ctx)
		case "read":
			err = a.Read(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", describe(err))
		}
	}
}

// describe turns an error into a line for the user. API and session
// failures use the client's user-facing messages.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr),
		errors.Is(err, client.ErrUnavailable),
		errors.Is(err, client.ErrRefreshFailed),
		errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, client.ErrForbidden):
		return client.UserMessage(err)
	}
	return err.Error()
}
