package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/forum/internal/comment"
	"github.com/VitaminP8/forum/internal/config"
	httpapi "github.com/VitaminP8/forum/internal/http"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/post"
	"github.com/VitaminP8/forum/internal/storage/database"
	"github.com/VitaminP8/forum/internal/storage/memory"
	redisstore "github.com/VitaminP8/forum/internal/storage/redis"
	"github.com/VitaminP8/forum/internal/subscription"
	"github.com/VitaminP8/forum/internal/token"
	"github.com/VitaminP8/forum/internal/user"
	"github.com/jinzhu/gorm"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// loadConfig reads env files, the YAML file and the environment, in that order.
func loadConfig(opts *RootOptions, log logging.Logger) (*config.Config, error) {
	if err := config.LoadEnv(opts.EnvFiles...); err != nil {
		log.Warn(context.Background(), "env file not loaded", "error", err)
	}
	return config.Load(opts.ConfigPath)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
}

type storages struct {
	users    user.UserStorage
	tokens   token.TokenStorage
	posts    post.PostStorage
	comments comment.CommentStorage
}

// App is the assembled server: storages, services and the HTTP handler.
type App struct {
	Handler *httpapi.Handler

	db  *gorm.DB
	rdb *redis.Client
}

// NewApp connects the configured backends and builds the services on top of them.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	app := &App{}
	var s storages

	switch cfg.Storage {
	case config.StorageMemory:
		db := memory.New()
		s = storages{
			users:    memory.NewUserMemoryStorage(db),
			tokens:   memory.NewTokenMemoryStorage(db),
			posts:    memory.NewPostMemoryStorage(db),
			comments: memory.NewCommentMemoryStorage(db),
		}
	case config.StoragePostgres, config.StorageSQLite:
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		app.db = db
		if err := database.Migrate(db); err != nil {
			app.Close()
			return nil, err
		}
		s = storages{
			users:    database.NewUserDatabaseStorage(db),
			tokens:   database.NewTokenDatabaseStorage(db),
			posts:    database.NewPostDatabaseStorage(db),
			comments: database.NewCommentDatabaseStorage(db),
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
	log.Info(ctx, "storage ready", "storage", cfg.Storage)

	if cfg.Tokens == config.TokensRedis {
		rdb, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.rdb = rdb
		s.tokens = redisstore.NewTokenRedisStorage(rdb, redisstore.DefaultPrefix)
		log.Info(ctx, "tokens stored in redis", "addr", cfg.Redis.Addr)
	}

	tokens := token.NewService(s.tokens, []byte(cfg.JWTSecret), cfg.TokenTTL)
	users, err := user.NewService(s.users, tokens, log, user.Options{
		LookupKey:      []byte(cfg.AppKey),
		PasswordLength: cfg.PasswordLength,
		MaxAttempts:    cfg.LookupMaxAttempts,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Handler = httpapi.NewHandler(
		users,
		tokens,
		post.NewService(s.posts, log),
		comment.NewService(s.comments, s.posts, subscription.NewSubscriptionManager(), log),
		log,
		httpapi.Options{CORSOrigins: cfg.CORSOrigins},
	)
	return app, nil
}

// Close releases database and redis connections.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close the database connection: %w", err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
