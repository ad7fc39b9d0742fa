package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VitaminP8/forum/internal/config"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command; set flags win over config and environment.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Storage string
	Tokens  string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the forum HTTP API under /api/v1.

Example:
  forum serve --storage sqlite
  forum serve --storage postgres --tokens redis --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from FORUM_ADDR or :8080)")
	cmd.Flags().StringVar(&opts.Storage, "storage", "", "storage backend: memory, postgres or sqlite")
	cmd.Flags().StringVar(&opts.Tokens, "tokens", "", "token backend: database or redis")

	return cmd
}

func (o *ServeOptions) apply(cfg *config.Config) {
	if o.Addr != "" {
		cfg.Addr = o.Addr
	}
	if o.Storage != "" {
		cfg.Storage = o.Storage
	}
	if o.Tokens != "" {
		cfg.Tokens = o.Tokens
	}
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := loadConfig(opts.RootOptions, logging.New(cmd.ErrOrStderr(), "text", "info"))
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error(context.Background(), "error closing backends", "error", err)
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           app.Handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(app.Handler.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server started", "addr", ln.Addr().String(), "storage", cfg.Storage, "tokens", cfg.Tokens)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutCtx); err != nil {
		return err
	}

	log.Info(context.Background(), "server stopped")
	return nil
}
