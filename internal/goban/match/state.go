package match

import (
	"github.com/hoshiten/goban/internal/goban/board"
)

// Status describes the match lifecycle phase.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Result names the outcome of a finished match.
type Result string

const (
	ResultNone  Result = ""
	ResultBlack Result = "black"
	ResultWhite Result = "white"
	ResultDraw  Result = "draw"
)

// Actor labels for the command/event envelopes.
const (
	ActorBlack = "black"
	ActorWhite = "white"
)

// ColorFromActor maps an envelope actor label to a stone color.
func ColorFromActor(actor string) board.Cell {
	switch actor {
	case ActorBlack:
		return board.Black
	case ActorWhite:
		return board.White
	default:
		return board.Empty
	}
}

// ActorFromColor maps a stone color to its envelope actor label.
func ActorFromColor(color board.Cell) string {
	switch color {
	case board.Black:
		return ActorBlack
	case board.White:
		return ActorWhite
	default:
		return ""
	}
}

// Captures tallies stones taken by each color.
type Captures struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// Snapshot records the state that existed before a stone was played. The
// history is append-only except for undo, which pops the tail.
type Snapshot struct {
	Board    board.Board  `json:"board"`
	Captured Captures     `json:"captured"`
	LastMove *board.Point `json:"last_move,omitempty"`
	Turn     board.Cell   `json:"turn"`
}

// State is the authoritative match state. It is mutated only by folding
// events; both peers hold their own copy and converge by folding the same
// sequence.
type State struct {
	MatchID  string       `json:"match_id"`
	Board    board.Board  `json:"board"`
	Turn     board.Cell   `json:"turn"`
	Captured Captures     `json:"captured"`
	History  []Snapshot   `json:"history"`
	Passes   int          `json:"passes"`
	Status   Status       `json:"status"`
	Winner   Result       `json:"winner"`
	LastMove *board.Point `json:"last_move,omitempty"`
}

// New returns a fresh match: empty board, Black to move, zero captures.
func New(matchID string, size int) State {
	return State{
		MatchID: matchID,
		Board:   board.New(size),
		Turn:    board.Black,
		Status:  StatusInProgress,
		Winner:  ResultNone,
	}
}

// Finished reports whether the match reached a terminal state.
func (s State) Finished() bool {
	return s.Status == StatusFinished
}

// Moves returns the number of stones played so far.
func (s State) Moves() int {
	return len(s.History)
}

// priorPosition returns the position that existed immediately before the
// last stone was played, which is the reference for the repetition check.
// It returns nil when no stone has been played yet.
func (s State) priorPosition() *board.Board {
	if len(s.History) == 0 {
		return nil
	}
	prior := s.History[len(s.History)-1].Board
	return &prior
}

// Score returns the area totals for both colors: stones on the board plus
// stones captured.
func (s State) Score() (black, white int) {
	black = s.Board.Count(board.Black) + s.Captured.Black
	white = s.Board.Count(board.White) + s.Captured.White
	return black, white
}

// winnerByArea compares area totals, with a draw on tie.
func (s State) winnerByArea() Result {
	black, white := s.Score()
	switch {
	case black > white:
		return ResultBlack
	case white > black:
		return ResultWhite
	default:
		return ResultDraw
	}
}

// snapshot captures the pre-move state for the history tail.
func (s State) snapshot() Snapshot {
	return Snapshot{
		Board:    s.Board.Clone(),
		Captured: s.Captured,
		LastMove: s.LastMove,
		Turn:     s.Turn,
	}
}
