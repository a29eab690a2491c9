// Package board defines the grid model shared by the rule engine and the
// match state machine.
//
// The board is a leaf dependency with no game logic of its own beyond shape
// invariants: fixed size per match, coordinates inside [0, Size), and
// copy-on-write mutation so prior positions stay intact for history and
// repetition checks.
package board
