// Package errors provides structured error handling for infrastructure
// failures. Move-legality rejections never use this type; they stay inside
// the match decider as rejection codes and are surfaced locally only.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Peer transport errors
	CodeTransportClosed   Code = "TRANSPORT_CLOSED"
	CodeEnvelopeMalformed Code = "ENVELOPE_MALFORMED"
	CodeEnvelopeUnknown   Code = "ENVELOPE_UNKNOWN_KIND"
	CodePeerAlreadyJoined Code = "PEER_ALREADY_JOINED"

	// Configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)
