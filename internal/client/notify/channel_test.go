package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
)

type event struct {
	name string
	data string
}

// fakeStream replays events after onOpen, then blocks until ctx is done
// unless err is set.
type fakeStream struct {
	events []event
	err    error
}

func (s *fakeStream) Subscribe(ctx context.Context, onOpen func(), onEvent func(string, []byte)) error {
	if s.err != nil {
		return s.err
	}
	onOpen()
	for _, e := range s.events {
		onEvent(e.name, []byte(e.data))
	}
	<-ctx.Done()
	return ctx.Err()
}

type fakeOpener struct {
	mu     sync.Mutex
	stream Stream
	tokens []string
}

func (o *fakeOpener) Open(token string) Stream {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens = append(o.tokens, token)
	return o.stream
}

func storeWith(t *testing.T, access string) tokens.Store {
	t.Helper()
	s := tokens.NewMemoryStore()
	if access != "" {
		require.NoError(t, s.Set(context.Background(), access, ""))
	}
	return s
}

func TestChannel_NoTokenStaysIdle(t *testing.T) {
	op := &fakeOpener{stream: &fakeStream{}}
	ch := NewChannel(op, storeWith(t, ""), NewInbox(), "notification", logging.Discard())

	err := ch.Start(context.Background())
	assert.ErrorIs(t, err, common.ErrNoToken)
	assert.Equal(t, Idle, ch.State())
	assert.Empty(t, op.tokens)

	ch.Close()
	ch.Close()
	assert.Equal(t, Closed, ch.State())
	<-ch.Done()
}

func TestChannel_CollectsJSONEvents(t *testing.T) {
	stream := &fakeStream{events: []event{
		{name: "notification", data: "Event Stream Established."},
		{name: "notification", data: `{"id":1,"content":"class moved","createdAt":"2024-05-01T10:00:00"}`},
		{name: "other", data: `{"id":99,"content":"ignored"}`},
		{name: "notification", data: `{"id":2,"content":"new message","read":true}`},
	}}
	op := &fakeOpener{stream: stream}
	inbox := NewInbox()
	ch := NewChannel(op, storeWith(t, "a1"), inbox, "notification", logging.Discard())

	require.NoError(t, ch.Start(context.Background()))
	assert.Eventually(t, func() bool { return ch.State() == Streaming }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(inbox.List()) == 2 }, time.Second, 10*time.Millisecond)

	list := inbox.List()
	assert.Equal(t, int64(2), list[0].ID, "newest first")
	assert.Equal(t, int64(1), list[1].ID)
	assert.False(t, list[0].Read, "pushed entries are unread")
	assert.Equal(t, 2, inbox.UnreadCount())
	assert.Equal(t, []string{"a1"}, op.tokens)

	assert.ErrorIs(t, ch.Start(context.Background()), ErrAlreadyStarted)

	ch.Close()
	ch.Close()
	assert.Equal(t, Closed, ch.State())
}

func TestChannel_StreamErrorCloses(t *testing.T) {
	op := &fakeOpener{stream: &fakeStream{err: errors.New("401 Unauthorized")}}
	ch := NewChannel(op, storeWith(t, "a1"), NewInbox(), "notification", logging.Discard())

	require.NoError(t, ch.Start(context.Background()))
	select {
	case <-ch.Done():
	case <-time.After(time.Second):
		t.Fatal("channel did not close after stream error")
	}
	assert.Equal(t, Closed, ch.State())
}

func TestInbox_MarkRead(t *testing.T) {
	inbox := NewInbox()
	for i := int64(1); i <= 3; i++ {
		inbox.Push(models.Notification{ID: i, Content: fmt.Sprint("n", i)})
	}
	require.Equal(t, 3, inbox.UnreadCount())

	assert.True(t, inbox.MarkRead(2))
	assert.Equal(t, 2, inbox.UnreadCount())
	for _, n := range inbox.List() {
		assert.Equal(t, n.ID == 2, n.Read, "id %d", n.ID)
	}

	assert.False(t, inbox.MarkRead(2), "already read")
	assert.False(t, inbox.MarkRead(42), "unknown id")
	assert.Equal(t, 2, inbox.UnreadCount())
}

func TestInbox_OnPush(t *testing.T) {
	inbox := NewInbox()
	var got []int64
	inbox.OnPush(func(n models.Notification) { got = append(got, n.ID) })

	inbox.Push(models.Notification{ID: 5})
	inbox.Push(models.Notification{ID: 6})
	assert.Equal(t, []int64{5, 6}, got)
}

func TestSSEOpener_Integration(t *testing.T) {
	authz := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notify/subscribe", r.URL.Path)
		authz <- r.Header.Get(common.AuthorizationHeaderName)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, "event: notification\ndata: Event Stream Established.\n\n")
		fmt.Fprint(w, "event: notification\ndata: {\"id\":7,\"content\":\"hello\"}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	inbox := NewInbox()
	ch := NewChannel(NewSSEOpener(srv.URL, "/notify/subscribe", nil), storeWith(t, "Bearer a1"), inbox, "notification", logging.Discard())
	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()

	select {
	case h := <-authz:
		assert.Equal(t, "Bearer a1", h)
	case <-time.After(2 * time.Second):
		t.Fatal("stream was never opened")
	}

	assert.Eventually(t, func() bool { return inbox.UnreadCount() == 1 }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "hello", inbox.List()[0].Content)
}
