package database

import "errors"

var (
	// ErrAuditNotFound is returned when no stored audit matches the query.
	ErrAuditNotFound = errors.New("audit not found")

	// ErrDatabaseNotFound is returned by Open when the database file does not
	// exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")
)
