package match

import "github.com/hoshiten/goban/internal/goban/board"

// PlayPayload is the payload for a move.play command.
type PlayPayload struct {
	Point board.Point `json:"point"`
}

// PlayedPayload is the payload for a move.played event. Captured carries the
// stones removed by the move so consumers (journal, renderer diffing) do not
// have to re-run capture resolution.
type PlayedPayload struct {
	Point    board.Point `json:"point"`
	Captured int         `json:"captured"`
}

// RespondPayload is the payload for an undo.respond command.
type RespondPayload struct {
	Accept bool `json:"accept"`
}

// RestartPayload is the payload for match.restart commands and
// match.restarted events.
type RestartPayload struct {
	Size int `json:"size"`
}
