// Package peer keeps two independently-running clients on the same match
// state without a server.
//
// Every locally-originated mutating intent is decided, folded, and sent to
// the peer exactly once; every remotely-received envelope is folded locally
// and never re-sent. Because the decider and fold are pure, both sides
// converge as long as the transport delivers messages reliably and in
// order, which the channel implementation guarantees.
//
// The host (accepting side) plays Black and transfers the full match state
// once on connection establishment; everything afterwards is incremental.
package peer
