// Command carehub runs the care marketplace API and its maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"github.com/wichananm65/carehub-backend/internal/cache"
	"github.com/wichananm65/carehub-backend/internal/config"
	"github.com/wichananm65/carehub-backend/internal/database"
	"github.com/wichananm65/carehub-backend/internal/logger"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "carehub",
		Short: "Care services marketplace backend",
		Long: `carehub serves the marketplace API where users post care requests and
assistants apply to them. Configuration comes from the environment and an
optional .env file (DATABASE_URL, JWT_SECRET, REDIS_ADDR, UPLOAD_DIR, ...).`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// env is what every subcommand starts from.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	db    *sql.DB
	redis *redis.Client
}

func bootstrap(ctx context.Context) (*env, error) {
	cfg := config.Load()
	log, err := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
		Service: "carehub",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

// cache connects to Redis when configured. Without it the location list is
// read from Postgres every time and sign-out cannot revoke tokens.
func (e *env) cache(ctx context.Context) *cache.Cache {
	if e.cfg.RedisAddr == "" {
		return cache.New(nil)
	}
	client, err := cache.Connect(ctx, e.cfg.RedisAddr, e.cfg.RedisPassword, e.cfg.RedisDB)
	if err != nil {
		e.log.Warn("redis unavailable, running without cache and denylist", zap.Error(err))
		return cache.New(nil)
	}
	e.redis = client
	return cache.New(client)
}

func (e *env) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	_ = e.db.Close()
	_ = e.log.Sync()
}
