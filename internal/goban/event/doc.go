// Package event defines the event envelope emitted by accepted match
// commands.
//
// Events are immutable facts: the decider validates a command against
// current state and emits events, the fold applies them, and the peer
// session relays them. Both sides of a match fold the same event sequence,
// which is what keeps two independently-running clients convergent without
// a server.
package event
