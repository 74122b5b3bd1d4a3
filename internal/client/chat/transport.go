package chat

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"

	"github.com/gymhub/gymclient/internal/netx"
)

// Conn carries STOMP frames over a message-oriented transport.
type Conn interface {
	WriteFrame(f *frame.Frame) error
	// ReadFrame blocks for the next frame, skipping heart-beats.
	ReadFrame() (*frame.Frame, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// WSDialer opens WebSocket connections carrying one STOMP frame per text
// message.
type WSDialer struct {
	url    string
	dialer *websocket.Dialer
}

func NewWSDialer(baseURL, path string) (*WSDialer, error) {
	u, err := netx.WebSocketURL(baseURL, path)
	if err != nil {
		return nil, err
	}
	return &WSDialer{
		url:    u,
		dialer: &websocket.Dialer{Subprotocols: []string{"v12.stomp"}},
	}, nil
}

func (d *WSDialer) Dial(ctx context.Context) (Conn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", d.url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
	// gorilla allows one concurrent writer.
	wmu sync.Mutex
}

func (c *wsConn) WriteFrame(f *frame.Frame) error {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return fmt.Errorf("encode %s frame: %w", f.Command, err)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, buf.Bytes())
}

func (c *wsConn) ReadFrame() (*frame.Frame, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		f, err := frame.NewReader(bytes.NewReader(data)).Read()
		if err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		if f != nil {
			return f, nil
		}
	}
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
