//go:build !kube_noclient && kube_ws

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"kubeclient/pkg/errx"
)

// ErrProtocolMismatch is wrapped by UpgradeError when the server selects a
// subprotocol that was not offered.
var ErrProtocolMismatch = errors.New("Sec-WebSocket-Protocol mismatch")

// UpgradeError is the source of every UpgradeConnectionFailure.
type UpgradeError struct {
	StatusCode int
	Err        error
}

func (e *UpgradeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v (status %d)", e.Err, e.StatusCode)
	}
	return e.Err.Error()
}

func (e *UpgradeError) Unwrap() error {
	return e.Err
}

// Connection is an upgraded WebSocket stream.
type Connection struct {
	*websocket.Conn
	// Protocol is the subprotocol the server selected.
	Protocol string
}

// Upgrade opens a WebSocket to the target of req offering protocols, for
// exec, attach and port-forward style endpoints. The handshake uses the
// client's dialer, proxy, TLS settings and credentials but not its layers.
func (c *Client) Upgrade(ctx context.Context, req *http.Request, protocols ...string) (*Connection, error) {
	authed := req.Clone(ctx)
	if err := c.auth.apply(authed); err != nil {
		return nil, err
	}

	target := *req.URL
	switch target.Scheme {
	case "https":
		target.Scheme = "wss"
	default:
		target.Scheme = "ws"
	}

	dialer := &websocket.Dialer{
		NetDialContext:   c.transport.DialContext,
		Proxy:            c.transport.Proxy,
		TLSClientConfig:  c.transport.TLSClientConfig,
		HandshakeTimeout: c.cfg.Rest.Timeout,
		Subprotocols:     protocols,
	}
	ws, resp, err := dialer.DialContext(ctx, target.String(), authed.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) {
			upErr := &UpgradeError{Err: err}
			if resp != nil {
				upErr.StatusCode = resp.StatusCode
			}
			return nil, errx.UpgradeConnection(upErr)
		}
		return nil, classifyTransportError(err)
	}

	selected := ws.Subprotocol()
	if len(protocols) > 0 && !slices.Contains(protocols, selected) {
		_ = ws.Close()
		return nil, errx.UpgradeConnection(&UpgradeError{Err: fmt.Errorf("%w: server chose %q", ErrProtocolMismatch, selected)})
	}
	c.logger.V(2).Info("upgrade", "url", target.String(), "protocol", selected)
	return &Connection{Conn: ws, Protocol: selected}, nil
}
