// Package dbtest menyiapkan SQLite in-memory yang sudah dimigrasi untuk test.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	database "lingoschool_backend/internals/databases"
)

var seq atomic.Int64

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:lingo_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	database.TunePool(db, "sqlite")
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { database.Close(db) })
	return db
}
