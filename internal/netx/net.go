// Package netx holds small URL and transport-error helpers shared by the
// HTTP client and the realtime channels.
package netx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// IsNoResponse reports whether err means the request never produced an HTTP
// response (refused connection, DNS failure, reset). Cancellation by the
// caller's own context is not counted.
func IsNoResponse(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// JoinURL appends path to base, keeping exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// WebSocketURL converts an http(s) base URL into its ws(s) counterpart and
// appends path.
func WebSocketURL(base, path string) (string, error) {
	u, err := url.Parse(JoinURL(base, path))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
