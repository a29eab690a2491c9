// Package match owns the authoritative state of a two-player match and its
// write path.
//
// The shape follows a decider/fold split: Decide validates a command against
// current state and returns events or rejections without touching state;
// Fold applies an event and returns the next state. Both functions are pure
// and deterministic, so two peers that fold the same event sequence from the
// same starting position always hold identical state.
//
// History keeps one snapshot per stone played (passes are not recorded), and
// an accepted undo pops exactly the tail snapshot. Game end is two
// consecutive passes, scored by area: stones on the board plus stones
// captured, draw on tie.
package match
