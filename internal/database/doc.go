// Package database provides SQLite-based storage for finished batches.
//
// Every batch is stored as one row holding its JSON form together with the
// computed statistics and a few denormalized columns (subject, kind, counts)
// used for listing history without decoding the full batch.
//
// The database file lives in the XDG data directory by default
// (~/.local/share/footprint/footprint.db on Linux). The pure-Go
// modernc.org/sqlite driver is used so that no cgo toolchain is required.
package database
