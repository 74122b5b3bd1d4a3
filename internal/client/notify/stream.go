package notify

import (
	"context"
	"net/http"

	"github.com/r3labs/sse/v2"
	"gopkg.in/cenkalti/backoff.v1"

	"github.com/gymhub/gymclient/internal/common"
	"github.com/gymhub/gymclient/internal/netx"
)

// Stream is one server-push connection. Subscribe blocks until the stream
// ends or ctx is done, calling onOpen once the server accepted it.
type Stream interface {
	Subscribe(ctx context.Context, onOpen func(), onEvent func(name string, data []byte)) error
}

// Opener creates a stream authenticated with accessToken.
type Opener interface {
	Open(accessToken string) Stream
}

// SSEOpener opens text/event-stream connections to a fixed URL.
type SSEOpener struct {
	url  string
	http *http.Client
}

func NewSSEOpener(baseURL, path string, hc *http.Client) *SSEOpener {
	if hc == nil {
		hc = &http.Client{}
	}
	return &SSEOpener{url: netx.JoinURL(baseURL, path), http: hc}
}

func (o *SSEOpener) Open(accessToken string) Stream {
	c := sse.NewClient(o.url)
	c.Connection = o.http
	c.Headers[common.AuthorizationHeaderName] = common.BearerValue(accessToken)
	// No reconnect: a dropped stream stays closed.
	c.ReconnectStrategy = &backoff.StopBackOff{}
	return &sseStream{client: c}
}

type sseStream struct {
	client *sse.Client
}

func (s *sseStream) Subscribe(ctx context.Context, onOpen func(), onEvent func(string, []byte)) error {
	s.client.OnConnect(func(*sse.Client) { onOpen() })
	return s.client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		onEvent(string(msg.Event), msg.Data)
	})
}
