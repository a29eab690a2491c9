// Package rules implements move legality over a board snapshot: adjacency,
// connected-group discovery, liberty counting, capture resolution, suicide,
// and the repetition (ko) check.
//
// Every function is pure: the same inputs always produce the same outputs
// and no board passed in is ever mutated. The match state machine is the
// only caller that turns these results into state transitions.
//
// The ko check compares the candidate position against the immediately
// preceding position only. This is the simple ko rule, not positional
// superko: recreating a position older than the previous move is accepted.
package rules
