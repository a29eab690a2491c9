package match

import (
	"encoding/json"

	"github.com/hoshiten/goban/internal/goban/event"
	"github.com/hoshiten/goban/internal/goban/rules"
)

// Fold applies an event to match state and returns the next state. Events
// that cannot apply (stale or malformed) leave the state unchanged: folding
// is total so a replayed journal never aborts halfway.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case EventTypePlayed:
		return foldPlayed(state, evt)
	case EventTypePassed:
		return foldPassed(state)
	case EventTypeUndoAccepted:
		return foldUndoAccepted(state)
	case EventTypeUndoRequested, EventTypeUndoDeclined:
		// Negotiation progress lives in the peer session, not in match
		// state; the events exist so both sides observe the handshake.
		return state
	case EventTypeRestarted:
		return foldRestarted(state, evt)
	default:
		return state
	}
}

func foldPlayed(state State, evt event.Event) State {
	if state.Finished() {
		return state
	}
	var payload PlayedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return state
	}
	color := ColorFromActor(evt.Actor)

	resolved, captured, err := rules.Apply(state.Board, payload.Point, color, state.priorPosition())
	if err != nil {
		return state
	}

	state.History = append(state.History, state.snapshot())
	state.Board = resolved
	switch evt.Actor {
	case ActorBlack:
		state.Captured.Black += captured
	case ActorWhite:
		state.Captured.White += captured
	}
	state.Turn = color.Opponent()
	state.Passes = 0
	point := payload.Point
	state.LastMove = &point
	return state
}

func foldPassed(state State) State {
	if state.Finished() {
		return state
	}
	state.Passes++
	if state.Passes >= 2 {
		state.Status = StatusFinished
		state.Winner = state.winnerByArea()
		return state
	}
	state.Turn = state.Turn.Opponent()
	state.LastMove = nil
	return state
}

// foldUndoAccepted reverses the last stone played by restoring the tail
// snapshot. An empty history is an idempotent no-op: concurrent undo
// resolution on both peers can legitimately race here.
func foldUndoAccepted(state State) State {
	if state.Finished() || len(state.History) == 0 {
		return state
	}
	tail := state.History[len(state.History)-1]
	state.History = state.History[:len(state.History)-1]
	state.Board = tail.Board
	state.Captured = tail.Captured
	state.Turn = tail.Turn
	state.LastMove = tail.LastMove
	state.Passes = 0
	return state
}

func foldRestarted(state State, evt event.Event) State {
	size := state.Board.Size
	var payload RestartPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err == nil && payload.Size > 0 {
		size = payload.Size
	}
	return New(state.MatchID, size)
}
