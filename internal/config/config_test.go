package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "parking_db", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSslMode)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpirationHours)
	assert.Equal(t, "admin", cfg.AdminUsername)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("ADMIN_USERNAME", "root")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5433, cfg.DBPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpirationHours)
	assert.Equal(t, "root", cfg.AdminUsername)
}
