package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.True(t, cfg.App.GRPCEnabled)
	assert.Equal(t, 10, cfg.App.ShutdownTimeoutSeconds)
	assert.Equal(t, int64(1<<20), cfg.App.MaxBodyBytes)
	assert.Equal(t, 1000, cfg.App.MaxBatchSize)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "userdata", cfg.DB.Name)
	assert.Equal(t, 100, cfg.DB.BatchSize)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "user-crud-service", cfg.Logger.ServiceName)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "HTTP_PORT=9090\nDB_DRIVER=SQLite\nDB_SQLITE_PATH=/tmp/users.db\nAPP_ENV=production\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7,")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.App.HTTPPort, "env overrides file")
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/users.db", cfg.DB.SQLitePath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.7"}, cfg.RateLimit.TrustedProxies)
	assert.Equal(t, "info", cfg.Logger.Level, "production defaults")
	assert.Equal(t, "json", cfg.Logger.Format)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "mysql" }, wantErr: `DB_DRIVER "mysql" is not supported`},
		{name: "sqlite without path", mutate: func(c *Config) { c.DB.Driver = DriverSQLite; c.DB.SQLitePath = "" }, wantErr: "DB_SQLITE_PATH"},
		{name: "rate limit without redis", mutate: func(c *Config) { c.RateLimit.Enabled = true }, wantErr: "requires REDIS_ENABLED"},
		{name: "zero batch", mutate: func(c *Config) { c.App.MaxBatchSize = 0 }, wantErr: "MAX_BATCH_SIZE"},
		{name: "bad trusted proxy", mutate: func(c *Config) { c.RateLimit.TrustedProxies = []string{"not-an-ip"} }, wantErr: "RATE_LIMIT_TRUSTED_PROXIES"},
		{name: "grpc without port", mutate: func(c *Config) { c.App.GRPCPort = "" }, wantErr: "GRPC_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "userdata", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=userdata port=5432 sslmode=disable", db.DSN())
}
