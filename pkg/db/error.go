package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation
// from any of the supported engines.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL 23505
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL 1062
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite 2067
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsLockTimeoutErr reports whether err is a lock-wait timeout or a
// serialization failure. Callers treat these as retryable, unlike
// business-rule rejections.
func IsLockTimeoutErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "could not obtain lock"), // postgres NOWAIT
		strings.Contains(msg, "deadlock detected"),               // postgres 40P01
		strings.Contains(msg, "could not serialize access"),      // postgres 40001
		strings.Contains(msg, "Lock wait timeout exceeded"),      // mysql 1205
		strings.Contains(msg, "Deadlock found when trying"),      // mysql 1213
		strings.Contains(msg, "database is locked"):              // sqlite busy
		return true
	default:
		return false
	}
}

// LockSuffix returns the row-lock clause for the current dialect. SQLite
// serializes writers on its own and rejects FOR UPDATE.
func LockSuffix(conn *gorm.DB) string {
	if conn.Dialector.Name() == "sqlite" {
		return ""
	}
	return " FOR UPDATE"
}
