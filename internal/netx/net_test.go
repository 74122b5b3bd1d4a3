package netx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNoResponse(t *testing.T) {
	t.Run("refused connection", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := http.Get(ts.URL)
		require.Error(t, err)
		assert.True(t, IsNoResponse(context.Background(), err))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsNoResponse(context.Background(), nil))
	})

	t.Run("caller cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, IsNoResponse(ctx, errors.New("whatever")))
		assert.False(t, IsNoResponse(context.Background(), context.Canceled))
	})
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://h/api/users/me", JoinURL("http://h/api/", "/users/me"))
	assert.Equal(t, "http://h/reissue", JoinURL("http://h", "reissue"))
}

func TestWebSocketURL(t *testing.T) {
	u, err := WebSocketURL("http://localhost:8080", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", u)

	u, err = WebSocketURL("https://api.example.com/", "ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/ws", u)

	_, err = WebSocketURL("ftp://x", "/ws")
	require.Error(t, err)
}
