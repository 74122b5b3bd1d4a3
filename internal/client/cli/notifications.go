package cli

import (
	"context"
	"fmt"
)

func (a *App) Notifications(ctx context.Context) error {
	list := a.currentInbox().List()
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}
	for _, n := range list {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s #%d %s (%s)\n", mark, n.ID, n.Content, when(n.CreatedAt))
	}
	return nil
}

// Read marks one notification read: read <id>.
func (a *App) Read(ctx context.Context, args []string) error {
	id, err := parseID(args, "read <notificationId>")
	if err != nil {
		return err
	}
	inbox := a.currentInbox()
	if !inbox.MarkRead(id) {
		fmt.Fprintf(a.out, "No unread notification #%d\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "Marked #%d read, %d unread\n", id, inbox.UnreadCount())
	return nil
}
