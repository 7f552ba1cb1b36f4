// Package testutil provides an in-memory catalog database and fixtures for
// package tests.
package testutil

import (
	"testing"

	"whatsfresh/pkg/config"
	"whatsfresh/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that lives for the test.
// The pool holds a single connection so every query sees the same memory
// database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.InitDB(&config.DBConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		database.Close(db)
	})
	return db
}

// Count returns the number of rows of m matching the optional condition
func Count(t *testing.T, db *gorm.DB, m interface{}, query ...interface{}) int64 {
	t.Helper()
	q := db.Model(m)
	if len(query) > 0 {
		q = q.Where(query[0], query[1:]...)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}
