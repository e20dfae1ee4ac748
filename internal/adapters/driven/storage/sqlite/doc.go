// Package sqlite provides the SQLite metadata store for chunk records.
//
// The chunks table holds exactly one snapshot's records, keyed by index
// position. The snapshots table keeps the history of builds and marks the
// one whose chunks are currently stored as active.
//
// Uses modernc.org/sqlite (pure Go, no CGO).
package sqlite
