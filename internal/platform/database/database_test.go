package database_test

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/database"
)

func TestConfig_DSN(t *testing.T) {
	cfg := database.Config{
		Host: "db", Port: 5433, User: "catalog", Password: "secret", Database: "products", SSLMode: "require",
	}
	assert.Equal(t, "postgres://catalog:secret@db:5433/products?sslmode=require", cfg.DSN())
}

func TestConfig_DSNEscapesCredentials(t *testing.T) {
	cfg := database.Config{
		Host: "db", Port: 5432, User: "catalog", Password: "p@ss:w/rd", Database: "products", SSLMode: "disable",
	}

	parsed, err := pgxpool.ParseConfig(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "catalog", parsed.ConnConfig.User)
	assert.Equal(t, "p@ss:w/rd", parsed.ConnConfig.Password)
	assert.Equal(t, "db", parsed.ConnConfig.Host)
	assert.Equal(t, uint16(5432), parsed.ConnConfig.Port)
	assert.Equal(t, "products", parsed.ConnConfig.Database)
}
