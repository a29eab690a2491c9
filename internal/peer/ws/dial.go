package ws

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/hoshiten/goban/internal/peer"
	"github.com/hoshiten/goban/internal/platform/timeouts"
)

// Dial connects to a host at addr, attaches the session as the joining side,
// and starts the read pump. addr is either a bare host:port or a full ws://
// URL; a bare address targets the standard /ws route. The returned connection
// lets the caller hang up; the read pump also closes it on any read failure.
func Dial(ctx context.Context, addr string, session *peer.Session) (*Conn, error) {
	target, err := dialURL(addr)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: timeouts.PeerDial}
	conn, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	transport := newConn(conn)
	if err := session.AttachAsJoiner(transport); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go readLoop(context.Background(), conn, session)
	return transport, nil
}

func dialURL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("peer address is required")
	}
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr, nil
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	return u.String(), nil
}
