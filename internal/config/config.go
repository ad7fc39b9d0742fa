package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	TokensDatabase = "database"
	TokensRedis    = "redis"
)

type Config struct {
	Addr    string `yaml:"addr"`
	Storage string `yaml:"storage"`
	Tokens  string `yaml:"tokens"`

	// AppKey keys the password lookup HMAC. It must never leave the server.
	AppKey            string        `yaml:"app_key"`
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	LookupMaxAttempts int           `yaml:"lookup_max_attempts"`
	PasswordLength    int           `yaml:"password_length"`

	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`

	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`
}

type Database struct {
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	Port       string `yaml:"port"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func Defaults() *Config {
	return &Config{
		Addr:              ":8080",
		Storage:           StorageMemory,
		Tokens:            TokensDatabase,
		TokenTTL:          72 * time.Hour,
		LookupMaxAttempts: 5,
		PasswordLength:    20,
		Database: Database{
			Host:       "localhost",
			Port:       "5432",
			SSLMode:    "disable",
			SQLitePath: "forum.db",
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
		CORSOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5500"},
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadEnv loads .env (or the given files) into the process environment.
// A missing file is reported but is not fatal for the caller.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf(".env file not loaded: %w", err)
	}
	return nil
}

// Load resolves configuration: defaults, then the YAML file at path
// (or FORUM_CONFIG), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("FORUM_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Addr = envString("FORUM_ADDR", c.Addr)
	c.Storage = envString("FORUM_STORAGE", c.Storage)
	c.Tokens = envString("FORUM_TOKENS", c.Tokens)

	c.AppKey = envString("APP_KEY", c.AppKey)
	c.JWTSecret = envString("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = envDuration("TOKEN_TTL", c.TokenTTL)
	c.LookupMaxAttempts = envInt("LOOKUP_MAX_ATTEMPTS", c.LookupMaxAttempts)
	c.PasswordLength = envInt("PASSWORD_LENGTH", c.PasswordLength)

	c.Database.Host = envString("DB_HOST", c.Database.Host)
	c.Database.User = envString("DB_USER", c.Database.User)
	c.Database.Password = envString("DB_PASSWORD", c.Database.Password)
	c.Database.Name = envString("DB_NAME", c.Database.Name)
	c.Database.Port = envString("DB_PORT", c.Database.Port)
	c.Database.SSLMode = envString("DB_SSLMODE", c.Database.SSLMode)
	c.Database.SQLitePath = envString("SQLITE_PATH", c.Database.SQLitePath)

	c.Redis.Addr = envString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envInt("REDIS_DB", c.Redis.DB)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString("LOG_FORMAT", c.LogFormat)
}

func (c *Config) Validate() error {
	var errs []error

	if c.AppKey == "" {
		errs = append(errs, errors.New("APP_KEY is not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	switch c.Storage {
	case StorageMemory, StoragePostgres, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	switch c.Tokens {
	case TokensDatabase, TokensRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown token backend %q", c.Tokens))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.LookupMaxAttempts < 1 {
		errs = append(errs, errors.New("lookup max attempts must be at least 1"))
	}
	if c.PasswordLength < 12 {
		errs = append(errs, errors.New("password length must be at least 12"))
	}

	return errors.Join(errs...)
}

// PostgresDSN renders the connection string for the postgres dialect.
func (c *Config) PostgresDSN() string {
	d := c.Database
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
