// Package ws carries peer envelopes over a websocket connection. The host
// side runs a small HTTP server that accepts exactly one peer; the joiner
// side dials it. Both ends feed received envelopes into a peer session.
package ws

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hoshiten/goban/internal/peer"
)

// Conn adapts a websocket connection to the peer transport. Writes serialize
// on a mutex because gorilla permits only one concurrent writer.
type Conn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newConn(c *websocket.Conn) *Conn {
	return &Conn{conn: c}
}

// Send writes one envelope as a JSON text frame.
func (c *Conn) Send(env peer.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(env)
}

// Close closes the underlying connection, which also unblocks the read loop.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// readLoop pumps envelopes into the session until the connection fails or
// closes. It detaches the session on exit so local play can continue.
func readLoop(ctx context.Context, conn *websocket.Conn, session *peer.Session) {
	defer session.Detach()
	defer func() {
		_ = conn.Close()
	}()

	for {
		var env peer.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("peer: connection read failed: %v", err)
			}
			return
		}
		if err := session.HandleEnvelope(ctx, env); err != nil {
			// A malformed or unknown envelope is dropped, not fatal: the
			// peers are cooperative and the next envelope may be fine.
			log.Printf("peer: dropped %s envelope: %v", env.Kind, err)
		}
	}
}
