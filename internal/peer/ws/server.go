package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hoshiten/goban/internal/peer"
	"github.com/hoshiten/goban/internal/platform/timeouts"
)

// Peers connect directly by address, not from a browser page, so origin
// checks would only reject legitimate clients.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server hosts the accepting side of a match. It upgrades a single websocket
// peer and binds it to the session; later connection attempts are refused
// until the current peer disconnects.
type Server struct {
	addr            string
	session         *peer.Session
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// NewServer builds a host server for the given listen address.
func NewServer(addr string, session *peer.Session) *Server {
	s := &Server{
		addr:            addr,
		session:         session,
		shutdownTimeout: timeouts.Shutdown,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return s
}

// Handler exposes the route table for in-process serving in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.session.Connected() {
		http.Error(w, "a peer is already connected", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("peer: websocket upgrade failed for remote=%s: %v", r.RemoteAddr, err)
		return
	}

	if err := s.session.AttachAsHost(newConn(conn)); err != nil {
		log.Printf("peer: attach failed for remote=%s: %v", r.RemoteAddr, err)
		_ = conn.Close()
		return
	}

	log.Printf("peer: connected from %s", r.RemoteAddr)
	readLoop(r.Context(), conn, s.session)
	log.Printf("peer: disconnected from %s", r.RemoteAddr)
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	log.Printf("peer: listening on %s", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown peer server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve peer: %w", err)
	}
}
