package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoshiten/goban/internal/goban/board"
	"github.com/hoshiten/goban/internal/peer"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func wsURL(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestHostAndJoinerExchangeMoves(t *testing.T) {
	host := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "host"})
	server := NewServer("127.0.0.1:0", host)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	// A move made before the peer arrives travels in the SYNC snapshot.
	if err := host.Play(context.Background(), board.Point{X: 2, Y: 2}); err != nil {
		t.Fatalf("host pre-join move: %v", err)
	}

	joiner := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "joiner"})
	if _, err := Dial(context.Background(), wsURL(t, ts), joiner); err != nil {
		t.Fatalf("dial: %v", err)
	}

	waitFor(t, "host attach", host.Connected)
	waitFor(t, "sync applied", func() bool { return joiner.State().Moves() == 1 })
	if joiner.State().Board.At(board.Point{X: 2, Y: 2}) != board.Black {
		t.Fatal("expected pre-join stone in synced state")
	}

	if err := joiner.Play(context.Background(), board.Point{X: 6, Y: 6}); err != nil {
		t.Fatalf("joiner move: %v", err)
	}
	waitFor(t, "joiner move on host board", func() bool {
		return host.State().Board.At(board.Point{X: 6, Y: 6}) == board.White
	})

	if err := host.Play(context.Background(), board.Point{X: 3, Y: 3}); err != nil {
		t.Fatalf("host move: %v", err)
	}
	waitFor(t, "host move on joiner board", func() bool {
		return joiner.State().Board.At(board.Point{X: 3, Y: 3}) == board.Black
	})
}

func TestSecondPeerRefusedWhileConnected(t *testing.T) {
	host := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "host"})
	server := NewServer("127.0.0.1:0", host)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	first := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "first"})
	if _, err := Dial(context.Background(), wsURL(t, ts), first); err != nil {
		t.Fatalf("first dial: %v", err)
	}
	waitFor(t, "host attach", host.Connected)

	second := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "second"})
	if _, err := Dial(context.Background(), wsURL(t, ts), second); err == nil {
		t.Fatal("expected second dial to be refused")
	}
	if second.Connected() {
		t.Fatal("expected second session to stay unattached")
	}
}

func TestDisconnectDetachesBothSides(t *testing.T) {
	host := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "host"})
	server := NewServer("127.0.0.1:0", host)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	joiner := peer.NewSession(peer.Config{MatchID: "m1", BoardSize: 9, LocalName: "joiner"})
	conn, err := Dial(context.Background(), wsURL(t, ts), joiner)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, "host attach", host.Connected)

	if err := host.Play(context.Background(), board.Point{X: 4, Y: 4}); err != nil {
		t.Fatalf("host move: %v", err)
	}
	waitFor(t, "move relayed", func() bool { return joiner.State().Moves() == 1 })

	// Hang up from the joiner side; the abrupt close fails both read pumps.
	if err := conn.Close(); err != nil {
		t.Fatalf("close joiner connection: %v", err)
	}

	waitFor(t, "host detach", func() bool { return !host.Connected() })
	waitFor(t, "joiner detach", func() bool { return !joiner.Connected() })

	// Match state survives the disconnect on both sides.
	if host.State().Moves() != 1 || joiner.State().Moves() != 1 {
		t.Fatal("expected match state preserved after disconnect")
	}
}

func TestDialURL(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    string
		wantErr bool
	}{
		{name: "bare address", addr: "127.0.0.1:4000", want: "ws://127.0.0.1:4000/ws"},
		{name: "full url", addr: "ws://example.com:4000/ws", want: "ws://example.com:4000/ws"},
		{name: "tls url", addr: "wss://example.com/ws", want: "wss://example.com/ws"},
		{name: "empty", addr: "  ", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dialURL(tc.addr)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("dialURL: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
