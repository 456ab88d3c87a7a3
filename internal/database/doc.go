// Package database provides SQLite-based storage for idguard reports.
//
// ReportDB is the persistence collaborator of the exposure and hygiene
// checks. Each finished check is stored once as a row holding a small
// summary projection for history listings and the complete report document
// for re-rendering. Rows are never updated after insertion.
//
// The schema is managed with goose migrations embedded in the binary, and
// the driver is modernc.org/sqlite, so no cgo toolchain is needed.
package database
