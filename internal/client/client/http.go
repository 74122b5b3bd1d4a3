package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/logging"
	"github.com/gymhub/gymclient/internal/netx"
)

const maxErrorBody = 64 << 10

// HTTPClient talks to the REST API with token injection and the
// refresh-or-logout policy applied to every response.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	bare    *http.Client
	tokens  tokens.Store
	logger  logging.Logger
	reissue singleflight.Group
}

type Option func(*HTTPClient)

// WithHTTPClient sets the transport used for authenticated calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithBareHTTPClient sets the transport used for login and reissue calls.
func WithBareHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.bare = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func New(baseURL string, store tokens.Store, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
		bare:    &http.Client{},
		tokens:  store,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the store the client reads credentials from.
func (c *HTTPClient) Tokens() tokens.Store {
	return c.tokens
}

// BaseURL is the API root every path is resolved against.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// call describes one logical request. attempt is 0 for the original send
// and 1 for the single replay after a successful reissue.
type call struct {
	method    string
	path      string
	query     url.Values
	body      []byte
	requestID string
	attempt   int
}

func newCall(method, path string, query url.Values, payload any) (call, error) {
	cl := call{method: method, path: path, query: query, requestID: uuid.NewString()}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return call{}, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		cl.body = b
	}
	return cl, nil
}

func (c *HTTPClient) url(path string, query url.Values) string {
	u := netx.JoinURL(c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *HTTPClient) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.url(cl.path, cl.query), body)
	if err != nil {
		return nil, err
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, cl.requestID)
	return req, nil
}

// authorize attaches the access token, if any.
func authorize(req *http.Request, accessToken string) {
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(accessToken))
	}
}

// execute sends cl and applies the failure policy, in order:
// no response, recoverable 401, unrecoverable 401, 403, anything else.
func (c *HTTPClient) execute(ctx context.Context, cl call) (*http.Response, error) {
	log := c.logger.With("method", cl.method, "path", cl.path, "request_id", cl.requestID, "attempt", cl.attempt)

	sent := c.tokens.Get(ctx)
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	authorize(req, sent.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		if netx.IsNoResponse(ctx, err) {
			c.clear(ctx, "no response")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	log.Debug(ctx, "api response", "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	apiErr := readAPIError(resp)
	pair := c.tokens.Get(ctx)

	switch {
	case apiErr.Status == http.StatusUnauthorized && cl.attempt == 0 && pair.HasRefresh():
		// Another call may already have rotated the pair while this one
		// was in flight; replaying with the new token is enough then.
		if !pair.HasAccess() || pair.AccessToken == sent.AccessToken {
			if err := c.refresh(ctx, pair.RefreshToken); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.clear(ctx, "refresh failed")
				return nil, err
			}
		}
		cl.attempt++
		return c.execute(ctx, cl)

	case apiErr.Status == http.StatusUnauthorized && !pair.HasRefresh():
		c.clear(ctx, "unauthorized without refresh token")
		return nil, apiErr

	case apiErr.Status == http.StatusForbidden:
		c.clear(ctx, "forbidden")
		return nil, apiErr
	}

	return nil, apiErr
}

func (c *HTTPClient) clear(ctx context.Context, reason string) {
	ctx = context.WithoutCancel(ctx)
	c.logger.Warn(ctx, "clearing session tokens", "reason", reason)
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error(ctx, "clear tokens", "error", err)
	}
}

// do runs a JSON call through execute and decodes the body into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	cl, err := newCall(method, path, query, payload)
	if err != nil {
		return err
	}

	resp, err := c.execute(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readAPIError drains and closes resp.Body, returning the user-facing error.
func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode, Message: GenericFailureMessage}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		if msg := common.FirstNonEmpty(body.Message, body.Error); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}

	if text := strings.TrimSpace(string(b)); len(text) <= 200 && !strings.HasPrefix(text, "<") {
		apiErr.Message = text
	}
	return apiErr
}
