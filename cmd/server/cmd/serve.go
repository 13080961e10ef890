package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/skillstage/server/internal/api"
	"github.com/skillstage/server/internal/auth"
	"github.com/skillstage/server/internal/config"
	"github.com/skillstage/server/internal/domain/users"
	"github.com/skillstage/server/internal/metrics"
	"github.com/skillstage/server/internal/storage/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SkillStage HTTP server",
	Long: `Start the SkillStage HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Bootstrap a tech expert account if ADMIN_* env vars are set
- Start the HTTP API with role gated auth
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug

  # Start with a config file
  server serve --config /etc/skillstage/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting SkillStage server")

	metrics.Init(Version, GitCommit, BuildDate)

	// The signing key is derived from the master secret, never used raw.
	jwtKey, err := auth.DeriveBearerJWTKey([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("derive jwt key: %w", err)
	}
	tokens := auth.NewJWTManager(jwtKey, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.Connect(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapTechExpert(bootstrapCtx, cfg, pool, logger); err != nil {
		logger.Error().Err(err).Msg("tech expert bootstrap failed")
	}
	bootstrapCancel()

	handler, janitor, err := api.NewRouter(cfg, logger, pool, tokens, api.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
	})
	if err != nil {
		return fmt.Errorf("router init failed: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	group.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		janitor(groupCtx)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// bootstrapTechExpert seeds the first tech expert account so a fresh deploy
// has someone who can manage roles. Skipped when the account already exists
// or the ADMIN_* variables are not fully set.
func bootstrapTechExpert(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) error {
	bootstrap := cfg.Bootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}
	store := repo.Users()

	if _, err := store.GetByEmail(ctx, bootstrap.Email); err == nil {
		return nil
	} else if !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("check tech expert account: %w", err)
	}

	hash, err := auth.HashPassword(bootstrap.Password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	if _, err := store.Create(ctx, users.CreateParams{
		Email:        bootstrap.Email,
		PasswordHash: hash,
		FirstName:    bootstrap.FirstName,
		LastName:     bootstrap.LastName,
		Role:         auth.RoleTechExpert,
	}); err != nil {
		return fmt.Errorf("create tech expert account: %w", err)
	}

	// Redact the email in production to avoid PII in logs.
	if cfg.Environment == "production" {
		logger.Info().Msg("bootstrapped tech expert account")
	} else {
		logger.Info().Str("email", bootstrap.Email).Msg("bootstrapped tech expert account")
	}
	return nil
}

