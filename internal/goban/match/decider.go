package match

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hoshiten/goban/internal/goban/board"
	"github.com/hoshiten/goban/internal/goban/command"
	"github.com/hoshiten/goban/internal/goban/event"
	"github.com/hoshiten/goban/internal/goban/rules"
)

const (
	CommandTypePlay        command.Type = "move.play"
	CommandTypePass        command.Type = "move.pass"
	CommandTypeUndoRequest command.Type = "undo.request"
	CommandTypeUndoRespond command.Type = "undo.respond"
	CommandTypeRestart     command.Type = "match.restart"

	EventTypePlayed        event.Type = "move.played"
	EventTypePassed        event.Type = "move.passed"
	EventTypeUndoRequested event.Type = "undo.requested"
	EventTypeUndoAccepted  event.Type = "undo.accepted"
	EventTypeUndoDeclined  event.Type = "undo.declined"
	EventTypeRestarted     event.Type = "match.restarted"

	// Rejection codes. Legality failures stay local: rejected commands are
	// never relayed to the peer.
	RejectionMatchOver      = "MATCH_ALREADY_OVER"
	RejectionOutOfTurn      = "MOVE_OUT_OF_TURN"
	RejectionActorUnknown   = "MOVE_ACTOR_UNKNOWN"
	RejectionPointOutOfGrid = "MOVE_POINT_OUT_OF_GRID"
	RejectionPointOccupied  = "MOVE_POINT_OCCUPIED"
	RejectionSuicide        = "MOVE_SUICIDE"
	RejectionKoRepeat       = "MOVE_KO_REPEAT"
	RejectionHistoryEmpty   = "UNDO_HISTORY_EMPTY"
	RejectionPayloadInvalid = "COMMAND_PAYLOAD_INVALID"
	RejectionCommandUnknown = "COMMAND_TYPE_UNKNOWN"
)

// Decide returns the decision for a match command against current state.
//
// Decide never mutates state. Turn order is also a precondition of the
// callers (UI and peer dispatcher), but it is re-checked here so that a
// command sequence folds identically on both sides of a match.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}

	switch cmd.Type {
	case CommandTypePlay:
		return decidePlay(state, cmd, now)
	case CommandTypePass:
		return decidePass(state, cmd, now)
	case CommandTypeUndoRequest:
		return decideUndoRequest(state, cmd, now)
	case CommandTypeUndoRespond:
		return decideUndoRespond(state, cmd, now)
	case CommandTypeRestart:
		return decideRestart(state, cmd, now)
	default:
		return command.Reject(command.Rejection{
			Code:    RejectionCommandUnknown,
			Message: "unknown command type " + string(cmd.Type),
		})
	}
}

func decidePlay(state State, cmd command.Command, now func() time.Time) command.Decision {
	if state.Finished() {
		return command.Reject(command.Rejection{
			Code:    RejectionMatchOver,
			Message: "match is over",
		})
	}
	color := ColorFromActor(cmd.Actor)
	if color == board.Empty {
		return command.Reject(command.Rejection{
			Code:    RejectionActorUnknown,
			Message: "actor must be black or white",
		})
	}
	if color != state.Turn {
		return command.Reject(command.Rejection{
			Code:    RejectionOutOfTurn,
			Message: "not this color's turn",
		})
	}

	var payload PlayPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    RejectionPayloadInvalid,
			Message: "play payload is invalid",
		})
	}
	if !state.Board.Contains(payload.Point) {
		return command.Reject(command.Rejection{
			Code:    RejectionPointOutOfGrid,
			Message: "point is outside the grid",
		})
	}

	_, captured, err := rules.Apply(state.Board, payload.Point, color, state.priorPosition())
	if err != nil {
		return command.Reject(legalityRejection(err))
	}

	payloadJSON, err := json.Marshal(PlayedPayload{Point: payload.Point, Captured: captured})
	if err != nil {
		return command.Reject(command.Rejection{
			Code:    RejectionPayloadInvalid,
			Message: "encode played payload",
		})
	}
	return command.Accept(command.NewEvent(cmd, EventTypePlayed, payloadJSON, now()))
}

func decidePass(state State, cmd command.Command, now func() time.Time) command.Decision {
	if state.Finished() {
		return command.Reject(command.Rejection{
			Code:    RejectionMatchOver,
			Message: "match is over",
		})
	}
	color := ColorFromActor(cmd.Actor)
	if color == board.Empty {
		return command.Reject(command.Rejection{
			Code:    RejectionActorUnknown,
			Message: "actor must be black or white",
		})
	}
	if color != state.Turn {
		return command.Reject(command.Rejection{
			Code:    RejectionOutOfTurn,
			Message: "not this color's turn",
		})
	}
	return command.Accept(command.NewEvent(cmd, EventTypePassed, nil, now()))
}

func decideUndoRequest(state State, cmd command.Command, now func() time.Time) command.Decision {
	if state.Finished() {
		return command.Reject(command.Rejection{
			Code:    RejectionMatchOver,
			Message: "match is over",
		})
	}
	if len(state.History) == 0 {
		return command.Reject(command.Rejection{
			Code:    RejectionHistoryEmpty,
			Message: "no move to undo",
		})
	}
	return command.Accept(command.NewEvent(cmd, EventTypeUndoRequested, nil, now()))
}

func decideUndoRespond(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload RespondPayload
	if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
		return command.Reject(command.Rejection{
			Code:    RejectionPayloadInvalid,
			Message: "respond payload is invalid",
		})
	}
	if payload.Accept {
		return command.Accept(command.NewEvent(cmd, EventTypeUndoAccepted, nil, now()))
	}
	return command.Accept(command.NewEvent(cmd, EventTypeUndoDeclined, nil, now()))
}

func decideRestart(state State, cmd command.Command, now func() time.Time) command.Decision {
	size := state.Board.Size
	if len(cmd.PayloadJSON) > 0 {
		var payload RestartPayload
		if err := json.Unmarshal(cmd.PayloadJSON, &payload); err != nil {
			return command.Reject(command.Rejection{
				Code:    RejectionPayloadInvalid,
				Message: "restart payload is invalid",
			})
		}
		if payload.Size > 0 {
			size = payload.Size
		}
	}
	payloadJSON, err := json.Marshal(RestartPayload{Size: size})
	if err != nil {
		return command.Reject(command.Rejection{
			Code:    RejectionPayloadInvalid,
			Message: "encode restart payload",
		})
	}
	return command.Accept(command.NewEvent(cmd, EventTypeRestarted, payloadJSON, now()))
}

// legalityRejection maps rule-engine failures to rejection codes. These are
// the recoverable, user-facing failures surfaced as transient messages.
func legalityRejection(err error) command.Rejection {
	switch {
	case errors.Is(err, rules.ErrOccupied):
		return command.Rejection{Code: RejectionPointOccupied, Message: "point is occupied"}
	case errors.Is(err, rules.ErrSuicide):
		return command.Rejection{Code: RejectionSuicide, Message: "move is suicide"}
	case errors.Is(err, rules.ErrKo):
		return command.Rejection{Code: RejectionKoRepeat, Message: "move repeats the previous position"}
	default:
		return command.Rejection{Code: RejectionPayloadInvalid, Message: err.Error()}
	}
}
