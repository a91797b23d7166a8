package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DATABASE_TASKS_PATH", "/tmp/tasks-test.db")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_TTL", "90s")
	t.Setenv("HTTP_REQUIRE_AUTH", "true")

	cfg, err := load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "/tmp/tasks-test.db", cfg.Database.TasksPath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.True(t, cfg.HTTP.RequireAuth)
	assert.Equal(t, "users.db", cfg.Database.UsersPath)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.yaml")
	content := []byte("http:\n  port: 4000\nusers:\n  seed_demo: true\njwt:\n  issuer: test-issuer\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.HTTP.Port)
	assert.True(t, cfg.Users.SeedDemo)
	assert.Equal(t, "test-issuer", cfg.JWT.Issuer)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name:    "empty tasks database path",
			mutate:  func(c *Config) { c.Database.TasksPath = "" },
			wantErr: "database paths",
		},
		{
			name:    "empty jwt secret",
			mutate:  func(c *Config) { c.JWT.SecretKey = "" },
			wantErr: "jwt.secret_key",
		},
		{
			name: "redis enabled without address",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Addr = ""
			},
			wantErr: "redis.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
