package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Defaults()
	cfg.AppKey = "app-key"
	cfg.JWTSecret = "jwt-secret"
	return cfg
}

func TestLoad(t *testing.T) {
	t.Run("Defaults without file or env", func(t *testing.T) {
		t.Setenv("FORUM_CONFIG", "")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, StorageMemory, cfg.Storage)
		assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
		assert.Equal(t, 20, cfg.PasswordLength)
	})

	t.Run("YAML file then env override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "forum.yaml")
		content := `
addr: ":9090"
storage: sqlite
token_ttl: 2h
app_key: from-file
database:
  sqlite_path: /tmp/forum-test.db
redis:
  addr: redis:6379
cors_origins: ["http://a.example"]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		t.Setenv("APP_KEY", "from-env")
		t.Setenv("LOOKUP_MAX_ATTEMPTS", "3")
		t.Setenv("CORS_ORIGINS", "http://b.example, http://c.example")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, StorageSQLite, cfg.Storage)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "from-env", cfg.AppKey)
		assert.Equal(t, 3, cfg.LookupMaxAttempts)
		assert.Equal(t, "/tmp/forum-test.db", cfg.Database.SQLitePath)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, []string{"http://b.example", "http://c.example"}, cfg.CORSOrigins)
	})

	t.Run("Invalid env values keep defaults", func(t *testing.T) {
		t.Setenv("FORUM_CONFIG", "")
		t.Setenv("TOKEN_TTL", "forever")
		t.Setenv("PASSWORD_LENGTH", "long")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
		assert.Equal(t, 20, cfg.PasswordLength)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("Secrets required", func(t *testing.T) {
		cfg := validConfig()
		cfg.AppKey = ""
		cfg.JWTSecret = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APP_KEY is not set")
		assert.Contains(t, err.Error(), "JWT_SECRET is not set")
	})

	t.Run("Unknown backends and bad numbers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Storage = "mongo"
		cfg.Tokens = "memcached"
		cfg.LookupMaxAttempts = 0
		cfg.PasswordLength = 8
		cfg.TokenTTL = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown storage "mongo"`)
		assert.Contains(t, err.Error(), `unknown token backend "memcached"`)
		assert.Contains(t, err.Error(), "lookup max attempts")
		assert.Contains(t, err.Error(), "password length")
		assert.Contains(t, err.Error(), "token ttl")
	})
}

func TestPostgresDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database = Database{Host: "db", User: "u", Password: "p", Name: "forum", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=forum port=5432 sslmode=disable", cfg.PostgresDSN())
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FORUM_TEST_LOADENV=yes\n"), 0o600))
	t.Setenv("FORUM_TEST_LOADENV", "")
	os.Unsetenv("FORUM_TEST_LOADENV")

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "yes", os.Getenv("FORUM_TEST_LOADENV"))

	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "nope.env")))
}
