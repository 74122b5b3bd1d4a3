package notify

import (
	"sync"

	"github.com/gymhub/gymclient/internal/client/models"
)

// Inbox is the session's notification list, newest first. Entries are never
// removed; MarkRead is the only mutation.
type Inbox struct {
	mu     sync.RWMutex
	items  []models.Notification
	onPush func(models.Notification)
}

func NewInbox() *Inbox {
	return &Inbox{}
}

// OnPush registers fn to run after each new entry. It replaces any earlier hook.
func (b *Inbox) OnPush(fn func(models.Notification)) {
	b.mu.Lock()
	b.onPush = fn
	b.mu.Unlock()
}

// Push prepends n as unread.
func (b *Inbox) Push(n models.Notification) {
	n.Read = false

	b.mu.Lock()
	b.items = append([]models.Notification{n}, b.items...)
	hook := b.onPush
	b.mu.Unlock()

	if hook != nil {
		hook(n)
	}
}

func (b *Inbox) List() []models.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// MarkRead flips the read flag of the entry with id. It reports whether an
// unread entry was found.
func (b *Inbox) MarkRead(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id && !b.items[i].Read {
			b.items[i].Read = true
			return true
		}
	}
	return false
}

func (b *Inbox) UnreadCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n
}
