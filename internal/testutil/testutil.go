// Package testutil builds throwaway stores for tests: a migrated SQLite
// database per test and an in-process redis.
package testutil

import (
	"path/filepath"
	"testing"

	"kodbank/internal/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in the test's temp dir with foreign
// keys enforced. It uses a single connection so concurrent writers queue
// instead of failing with SQLITE_BUSY.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "kodbank.db") + "?_pragma=foreign_keys(1)"
	gormDB, err := gorm.Open(sqlite.Open(dsn), db.Config())
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// NewRedis starts an in-process redis and returns it with a connected client
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}
