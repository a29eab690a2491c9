// Package storage defines the persistence interfaces for the match journal
// and finished-match results. Implementations live in subpackages.
package storage
