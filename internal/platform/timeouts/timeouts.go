// Package timeouts defines shared timeout constants used across commands.
// Centralizing these values prevents drift between the transport layers and
// makes the durations discoverable.
package timeouts

import "time"

// PeerDial caps the websocket handshake when joining a hosted match.
const PeerDial = 5 * time.Second

// ReadHeader limits how long the host HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long graceful shutdown waits for the host HTTP server
// and the telemetry exporter.
const Shutdown = 5 * time.Second
