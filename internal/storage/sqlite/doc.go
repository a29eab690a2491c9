// Package sqlite provides the SQLite-backed implementation of the storage
// interfaces. It owns its schema through embedded migrations applied on open.
package sqlite
