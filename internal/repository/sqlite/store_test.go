package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/repository/repositorytest"
	"github.com/pesio-ai/be-product-catalog/internal/repository/sqlite"
)

func newStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return sqlite.New(db)
}

func TestStoreContract(t *testing.T) {
	repositorytest.RunStoreContract(t, newStore)
}

func TestOpen_FileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	db, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(db))

	item := &repository.Item{Name: "Persisted", Price: repositorytest.Price("42.5"), Status: repository.StatusActive}
	require.NoError(t, sqlite.New(db).Items().Save(ctx, item))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := reopened.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	got, err := sqlite.New(reopened).Items().Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Name)
	assert.Equal(t, "42.5", got.Price.Decimal.String())
}
