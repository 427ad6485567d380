// Package testdb opens a private, fully migrated in-memory SQLite database
// for package tests.
package testdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/nutrieve/nutrieve/database/migrations"
	"github.com/nutrieve/nutrieve/pkg/database"
	"github.com/nutrieve/nutrieve/pkg/migration"
)

// Open returns a migrated database that is closed when t finishes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close() //nolint:errcheck
		}
	})

	_, err = migration.New(db, nil).Run()
	require.NoError(t, err)
	return db
}
