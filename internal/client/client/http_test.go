package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
)

// backend is a fake API: /users/me accepts only goodToken, /reissue hands
// out goodToken for any refresh token unless reissueStatus says otherwise.
type backend struct {
	goodToken     string
	meStatus      int
	meBody        string
	reissueStatus int
	reissueBody   string
	reissueDelay  time.Duration
	meBarrier     *sync.WaitGroup
	// goodStatus answers requests that carry goodToken, when set.
	goodStatus int

	meCalls      atomic.Int32
	reissueCalls atomic.Int32

	mu           sync.Mutex
	requestIDs   []string
	refreshSeen  []string
	reissueAuthz []string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls.Add(1)
		b.mu.Lock()
		b.requestIDs = append(b.requestIDs, r.Header.Get(common.RequestIDHeaderName))
		b.mu.Unlock()

		if b.meStatus != 0 {
			w.WriteHeader(b.meStatus)
			_, _ = w.Write([]byte(b.meBody))
			return
		}
		if r.Header.Get(common.AuthorizationHeaderName) != "Bearer "+b.goodToken {
			if b.meBarrier != nil {
				b.meBarrier.Done()
				b.meBarrier.Wait()
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if b.goodStatus != 0 {
			w.WriteHeader(b.goodStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(models.Session{UserID: 7, Role: models.RoleEndUser, Name: "Kim"})
	})
	mux.HandleFunc("/reissue", func(w http.ResponseWriter, r *http.Request) {
		b.reissueCalls.Add(1)
		var req reissueRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.refreshSeen = append(b.refreshSeen, req.RefreshToken)
		b.reissueAuthz = append(b.reissueAuthz, r.Header.Get(common.AuthorizationHeaderName))
		b.mu.Unlock()

		time.Sleep(b.reissueDelay)
		if b.reissueStatus != 0 {
			w.WriteHeader(b.reissueStatus)
			_, _ = w.Write([]byte(b.reissueBody))
			return
		}
		if b.reissueBody != "" {
			_, _ = w.Write([]byte(b.reissueBody))
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "Bearer " + b.goodToken, RefreshToken: "r2"})
	})
	return mux
}

func setup(t *testing.T, b *backend, access, refresh string) (*HTTPClient, *tokens.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	store := tokens.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), access, refresh))
	return New(srv.URL, store), store
}

func TestHTTPClient_AttachesBearer(t *testing.T) {
	b := &backend{goodToken: "a1"}
	c, _ := setup(t, b, "a1", "")

	s, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, int32(0), b.reissueCalls.Load())
	require.Len(t, b.requestIDs, 1)
	assert.NotEmpty(t, b.requestIDs[0])
}

func TestHTTPClient_RefreshesOnceAndReplays(t *testing.T) {
	b := &backend{goodToken: "fresh"}
	c, store := setup(t, b, "stale", "r1")

	s, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Kim", s.Name)

	assert.Equal(t, int32(1), b.reissueCalls.Load())
	assert.Equal(t, int32(2), b.meCalls.Load())
	assert.Equal(t, []string{"r1"}, b.refreshSeen)
	assert.Equal(t, []string{""}, b.reissueAuthz, "reissue must not carry a bearer token")
	require.Len(t, b.requestIDs, 2)
	assert.Equal(t, b.requestIDs[0], b.requestIDs[1], "replay keeps the request id")

	assert.Equal(t, models.TokenPair{AccessToken: "fresh", RefreshToken: "r2"}, store.Get(context.Background()))
}

func TestHTTPClient_UnauthorizedWithoutRefreshClears(t *testing.T) {
	b := &backend{goodToken: "fresh"}
	c, store := setup(t, b, "stale", "")

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(0), b.reissueCalls.Load())
	assert.Equal(t, models.TokenPair{}, store.Get(context.Background()))
}

func TestHTTPClient_RefreshFailureClears(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "rejected", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "malformed body", body: "not json"},
		{name: "missing access token", body: `{"refreshToken":"r9"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &backend{goodToken: "fresh", reissueStatus: tc.status, reissueBody: tc.body}
			c, store := setup(t, b, "stale", "r1")

			_, err := c.Me(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRefreshFailed)
			assert.Equal(t, int32(1), b.meCalls.Load(), "no replay after a failed refresh")
			assert.Equal(t, models.TokenPair{}, store.Get(context.Background()))
		})
	}
}

func TestHTTPClient_ReplayUnauthorizedIsReturned(t *testing.T) {
	b := &backend{goodToken: "fresh", meStatus: http.StatusUnauthorized}
	c, store := setup(t, b, "stale", "r1")

	_, err := c.Me(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(1), b.reissueCalls.Load())
	assert.Equal(t, int32(2), b.meCalls.Load())
	assert.True(t, store.Get(context.Background()).HasAccess())
}

func TestHTTPClient_ForbiddenClears(t *testing.T) {
	b := &backend{meStatus: http.StatusForbidden, meBody: `{"message":"not yours"}`}
	c, store := setup(t, b, "a1", "r1")

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "not yours", UserMessage(err))
	assert.Equal(t, int32(0), b.reissueCalls.Load())
	assert.Equal(t, models.TokenPair{}, store.Get(context.Background()))
}

func TestHTTPClient_ForbiddenAfterReplayClears(t *testing.T) {
	b := &backend{goodToken: "fresh", goodStatus: http.StatusForbidden}
	c, store := setup(t, b, "stale", "r1")

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, int32(1), b.reissueCalls.Load())
	assert.Equal(t, int32(2), b.meCalls.Load())
	assert.Equal(t, models.TokenPair{}, store.Get(context.Background()))
}

func TestHTTPClient_MalformedBaseURLKeepsTokens(t *testing.T) {
	store := tokens.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "a1", "r1"))
	c := New("http://bad host", store)

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, store.Get(context.Background()))
}

func TestHTTPClient_OtherErrorsKeepTokens(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message field", status: http.StatusConflict, body: `{"message":"room exists"}`, message: "room exists"},
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"bad id"}`, message: "bad id"},
		{name: "plain text", status: http.StatusBadRequest, body: "bad id", message: "bad id"},
		{name: "empty body", status: http.StatusInternalServerError, message: GenericFailureMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &backend{meStatus: tc.status, meBody: tc.body}
			c, store := setup(t, b, "a1", "r1")

			_, err := c.Me(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, store.Get(context.Background()))
		})
	}
}

func TestHTTPClient_NoResponseClears(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := tokens.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "a1", "r1"))
	c := New(url, store)

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, models.TokenPair{}, store.Get(context.Background()))
}

func TestHTTPClient_CancelledContextKeepsTokens(t *testing.T) {
	b := &backend{goodToken: "a1"}
	c, store := setup(t, b, "a1", "r1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Me(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, store.Get(context.Background()))
}

func TestHTTPClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const n = 5
	var barrier sync.WaitGroup
	barrier.Add(n)

	b := &backend{goodToken: "fresh", reissueDelay: 100 * time.Millisecond, meBarrier: &barrier}
	c, store := setup(t, b, "stale", "r1")

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), b.reissueCalls.Load())
	assert.Equal(t, "fresh", store.Get(context.Background()).AccessToken)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "server unreachable", UserMessage(ErrUnavailable))
	assert.Equal(t, "session expired, please log in again", UserMessage(ErrRefreshFailed))
	assert.Equal(t, "x", UserMessage(&APIError{Status: 500, Message: "x"}))
	assert.Equal(t, GenericFailureMessage, UserMessage(errors.New("boom")))
}
