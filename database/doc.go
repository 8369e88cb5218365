// Package database wraps gorm over SQLite for authd.
//
// Open connects with retries and pool settings from Config, Transaction
// runs a function in a transaction that rolls back on error or panic, and
// FromDatabase maps driver errors onto the application error taxonomy:
// unique constraint violations become a 409 AlreadyExists so callers can
// tell a secret or name collision from any other failure.
//
// The schema lives in database/migration as versioned SQL applied with
// golang-migrate. Component ties connection and migration into the
// component registry.
package database
