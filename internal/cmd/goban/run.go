package goban

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hoshiten/goban/internal/goban/board"
	"github.com/hoshiten/goban/internal/goban/match"
	"github.com/hoshiten/goban/internal/peer"
	"github.com/hoshiten/goban/internal/peer/ws"
	"github.com/hoshiten/goban/internal/platform/id"
	"github.com/hoshiten/goban/internal/storage"
	"github.com/hoshiten/goban/internal/storage/sqlite"
	"github.com/hoshiten/goban/internal/telemetry"
)

func run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	if cfg.Listen != "" && cfg.Connect != "" {
		return fmt.Errorf("-listen and -connect are mutually exclusive")
	}

	var store *sqlite.Store
	if cfg.Journal != "" {
		var err error
		store, err = sqlite.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close journal: %v", err)
			}
		}()
	}

	if cfg.ShowResults {
		if store == nil {
			return fmt.Errorf("-results requires -journal")
		}
		return printResults(ctx, out, store)
	}

	matchID := cfg.MatchID
	if matchID == "" {
		var err error
		matchID, err = id.NewID()
		if err != nil {
			return fmt.Errorf("generate match id: %w", err)
		}
	}
	name := cfg.Name
	if name == "" {
		switch {
		case cfg.Listen != "":
			name = "host"
		case cfg.Connect != "":
			name = "joiner"
		default:
			name = "local"
		}
	}

	// A typed-nil *sqlite.Store must not reach the emitter's interface
	// field, or the journal-disabled no-op path never triggers.
	var events storage.TelemetryStore
	if store != nil {
		events = store
	}
	ui := &console{
		ctx:     ctx,
		out:     out,
		emitter: telemetry.NewEmitter(events),
	}
	if store != nil {
		ui.results = store
	}

	var journal peer.EventSink
	if store != nil {
		journal = store
	}
	session := peer.NewSession(peer.Config{
		MatchID:   matchID,
		BoardSize: cfg.Size,
		LocalName: name,
		Journal:   journal,
		Hooks: peer.Hooks{
			StateChanged:  ui.stateChanged,
			ChatReceived:  ui.chatReceived,
			UndoRequested: ui.undoRequested,
			UndoResolved:  ui.undoResolved,
			PeerClosed:    ui.peerClosed,
		},
	})

	serveErr := make(chan error, 1)
	switch {
	case cfg.Listen != "":
		server := ws.NewServer(cfg.Listen, session)
		go func() {
			serveErr <- server.ListenAndServe(ctx)
		}()
		ui.printf("hosting match %s on %s, you play black", matchID, cfg.Listen)
	case cfg.Connect != "":
		conn, err := ws.Dial(ctx, cfg.Connect, session)
		if err != nil {
			return err
		}
		defer func() {
			_ = conn.Close()
		}()
		ui.printf("joined match at %s, you play white", cfg.Connect)
		ui.emit("peer.connected", matchID, cfg.Connect)
	default:
		ui.printf("hot-seat match %s, both colors play on this terminal", matchID)
	}
	ui.render(session.State())
	ui.printf(`type "help" for commands`)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := ui.dispatch(session, line); quit {
				return nil
			}
		}
	}
}

func printResults(ctx context.Context, out io.Writer, results storage.ResultStore) error {
	records, err := results.ListResults(ctx, 0)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "no finished matches recorded")
		return nil
	}
	for _, record := range records {
		fmt.Fprintf(out, "%s  %s  %s  black %d, white %d, %d moves\n",
			record.FinishedAt.Format("2006-01-02 15:04"), record.MatchID,
			resultLabel(record.Winner), record.ScoreBlack, record.ScoreWhite, record.Moves)
	}
	return nil
}

// console owns terminal output. Session hooks and the read pump print from
// other goroutines, so every write serializes on the mutex.
type console struct {
	ctx     context.Context
	mu      sync.Mutex
	out     io.Writer
	results storage.ResultStore
	emitter *telemetry.Emitter
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) emit(name, matchID, detail string) {
	evt := storage.TelemetryEvent{Name: name, MatchID: matchID, Detail: detail}
	if err := c.emitter.Emit(c.ctx, evt); err != nil {
		log.Printf("emit telemetry %s: %v", name, err)
	}
}

func (c *console) render(state match.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, state.Board.String())
	fmt.Fprintf(c.out, "captures: black %d, white %d\n", state.Captured.Black, state.Captured.White)
	if state.Finished() {
		black, white := state.Score()
		fmt.Fprintf(c.out, "match over: %s (black %d, white %d)\n", resultLabel(state.Winner), black, white)
		return
	}
	fmt.Fprintf(c.out, "%s to move\n", state.Turn)
}

func (c *console) stateChanged(state match.State) {
	c.render(state)
	if !state.Finished() {
		return
	}
	black, white := state.Score()
	if c.results != nil {
		record := storage.ResultRecord{
			MatchID:    state.MatchID,
			Winner:     state.Winner,
			ScoreBlack: black,
			ScoreWhite: white,
			Moves:      state.Moves(),
			FinishedAt: time.Now().UTC(),
		}
		if err := c.results.SaveResult(c.ctx, record); err != nil {
			log.Printf("save result: %v", err)
		}
	}
	c.emit("match.finished", state.MatchID, string(state.Winner))
}

func (c *console) chatReceived(msg peer.ChatMessage) {
	c.printf("[%s] %s", msg.From, msg.Text)
}

func (c *console) undoRequested() {
	c.printf(`peer asks to undo the last move: answer "yes" or "no"`)
}

func (c *console) undoResolved(accepted bool) {
	if accepted {
		c.printf("undo accepted")
		return
	}
	c.printf("undo declined")
}

func (c *console) peerClosed() {
	c.printf("peer disconnected, local play continues")
}

func (c *console) dispatch(session *peer.Session, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "play":
		if len(fields) != 3 {
			c.printf("usage: play <x> <y>")
			return false
		}
		x, errX := strconv.Atoi(fields[1])
		y, errY := strconv.Atoi(fields[2])
		if errX != nil || errY != nil {
			c.printf("usage: play <x> <y>")
			return false
		}
		c.report(session.Play(c.ctx, board.Point{X: x, Y: y}))
	case "pass":
		c.report(session.Pass(c.ctx))
	case "undo":
		c.report(session.RequestUndo(c.ctx))
	case "yes":
		c.report(session.RespondUndo(c.ctx, true))
	case "no":
		c.report(session.RespondUndo(c.ctx, false))
	case "restart":
		c.report(session.Restart(c.ctx))
	case "say":
		if len(fields) < 2 {
			c.printf("usage: say <message>")
			return false
		}
		c.report(session.Say(c.ctx, strings.Join(fields[1:], " ")))
	case "show":
		c.render(session.State())
	case "help":
		c.help()
	case "quit", "exit":
		return true
	default:
		c.printf("unknown command %q (try help)", fields[0])
	}
	return false
}

func (c *console) report(err error) {
	if err == nil {
		return
	}
	var rejected peer.Rejected
	if errors.As(err, &rejected) {
		c.printf("rejected: %s", rejected.Rejection.Message)
		return
	}
	c.printf("error: %v", err)
}

func (c *console) help() {
	c.printf(strings.TrimSpace(`
play <x> <y>  place a stone (coordinates start at 0)
pass          pass the turn (two passes end the match)
undo          ask to take back the last move
yes / no      answer the peer's undo request
restart       start the match over
say <text>    send a chat message
show          print the current board
quit          leave`))
}

func resultLabel(result match.Result) string {
	switch result {
	case match.ResultBlack:
		return "black wins"
	case match.ResultWhite:
		return "white wins"
	case match.ResultDraw:
		return "draw"
	default:
		return "unfinished"
	}
}
