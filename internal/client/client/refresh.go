package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/netx"
)

const reissuePath = "/reissue"

type reissueRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refresh exchanges refreshToken for a new pair. Callers holding the same
// refresh token share one in-flight reissue; a caller that gives up does not
// cancel the reissue for the others.
func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) error {
	ch := c.reissue.DoChan(refreshToken, func() (any, error) {
		return nil, c.reissueTokens(context.WithoutCancel(ctx), refreshToken)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// reissueTokens calls the reissue endpoint over the bare transport, so the
// call itself never carries a bearer token and never triggers a refresh.
func (c *HTTPClient) reissueTokens(ctx context.Context, refreshToken string) error {
	body, err := json.Marshal(reissueRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, netx.JoinURL(c.baseURL, reissuePath), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.bare.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("%w: malformed body: %v", ErrRefreshFailed, err)
	}
	if tokens.Normalize(out.AccessToken) == "" {
		return fmt.Errorf("%w: no access token in response", ErrRefreshFailed)
	}

	if err := c.tokens.Set(ctx, out.AccessToken, out.RefreshToken); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	c.logger.Info(ctx, "session tokens reissued")
	return nil
}
