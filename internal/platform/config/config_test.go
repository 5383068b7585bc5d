package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "be-product-catalog", cfg.Service.Name)
	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "5000", cfg.Policy.ApprovalThreshold)
	assert.Equal(t, "10000", cfg.Policy.MaxPrice)
	assert.Equal(t, "0.5", cfg.Policy.UpdateRatio)
	assert.True(t, cfg.Policy.EagerApplyOnQueue)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	yaml := []byte(`
storage:
  driver: sqlite
  sqlite_path: /tmp/catalog.db
server:
  port: 9000
  shutdown_timeout: 3s
policy:
  approval_threshold: "2500"
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("CATALOG_SERVER_PORT", "9100")
	t.Setenv("CATALOG_POLICY_EAGER_APPLY_ON_QUEUE", "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/catalog.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "2500", cfg.Policy.ApprovalThreshold)
	assert.False(t, cfg.Policy.EagerApplyOnQueue)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CATALOG_STORAGE_DRIVER", "mongo")

	_, err := config.Load("")
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
