package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gymhub/gymclient/internal/client/chat"
	"github.com/gymhub/gymclient/internal/client/models"
)

const leaveCommand = "/leave"

// Rooms prints the chat directory, most recent first.
func (a *App) Rooms(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}

	l, err := a.chatService.Rooms(ctx, s)
	if err != nil {
		return err
	}
	if len(l.Rooms) == 0 {
		fmt.Fprintln(a.out, "No chat rooms yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tWITH\tUNREAD\tLAST MESSAGE\tWHEN")
	for _, r := range l.Rooms {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", r.ChatRoomID, r.CounterpartyName, r.UnreadCount, truncate(r.LastMessage, 40), when(r.LastMessageTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Unread total: %d\n", l.UnreadTotal)
	return nil
}

// Open enters the room given as the first argument: open <roomId>.
func (a *App) Open(ctx context.Context, args []string) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	id, err := parseID(args, "open <roomId>")
	if err != nil {
		return err
	}

	roomCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	room, err := a.chatService.Open(roomCtx, s, id)
	if err != nil {
		return err
	}
	return a.chatLoop(roomCtx, room)
}

// Start opens, creating if needed, the room with a gym: start <gymId>.
func (a *App) Start(ctx context.Context, args []string) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	id, err := parseID(args, "start <gymId>")
	if err != nil {
		return err
	}

	roomCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	room, err := a.chatService.Start(roomCtx, s, id)
	if err != nil {
		return err
	}
	return a.chatLoop(roomCtx, room)
}

// chatLoop prints the room and publishes each input line until /leave or
// end of input.
func (a *App) chatLoop(ctx context.Context, room *chat.Room) error {
	defer room.Close()

	fmt.Fprintf(a.out, "Room %d (type %s to return)\n", room.Info().ID, leaveCommand)
	room.Follow(func(m models.ChatMessage) { a.printMessage(room, m) })

	for {
		line, err := readLine(a.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == leaveCommand {
			return nil
		}
		if err := room.Send(ctx, line); err != nil {
			fmt.Fprintln(a.out, "Error:", describe(err))
		}
	}
}

func (a *App) printMessage(room *chat.Room, m models.ChatMessage) {
	who := "them"
	if room.IsMine(m) {
		who = "me"
	}
	stamp := ""
	if !m.CreatedAt.IsZero() {
		stamp = m.CreatedAt.Local().Format("15:04") + " "
	}
	fmt.Fprintf(a.out, "%s%-4s| %s\n", stamp, who, m.Content)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func when(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(time.DateTime)
}
