// Package testutil holds helpers shared by tests that need a content store.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/IvanBrykalov/contentcache/internal/content"
)

// NewStore returns a migrated content store over a private in-memory
// SQLite database. The pool is pinned to one connection so every query
// sees the same database.
func NewStore(t testing.TB) *content.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := content.NewStore(db)
	require.NoError(t, err)
	return store
}
