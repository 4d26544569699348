package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haimn-support/job-search-tracker-api/internal/db"
	"github.com/haimn-support/job-search-tracker-api/internal/metrics"
	"github.com/haimn-support/job-search-tracker-api/internal/server"
	"github.com/haimn-support/job-search-tracker-api/internal/server/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing authentication, positions, interviews and statistics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.JWT.Validate(); err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveMigrate {
		if err := withMigrator(cfg, logger, (*db.Migrator).Up); err != nil {
			return err
		}
	}

	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	limiter, closeLimiter, err := newLimiter(ctx, cfg.RedisAddr, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	srv := server.New(server.Options{
		Port:               cfg.Port,
		Store:              database,
		JWT:                &cfg.JWT,
		Password:           &cfg.Password,
		Limiter:            limiter,
		Metrics:            metrics.New(),
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return srv.Run(ctx)
}

// newLimiter builds the request limiter. With a Redis address the counters
// are shared between replicas; otherwise they live in process memory.
func newLimiter(ctx context.Context, redisAddr string, logger *zap.Logger) (*ratelimit.Limiter, func(), error) {
	opts := []ratelimit.Option{ratelimit.WithLogger(logger)}
	closeFn := func() {}

	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
		}
		opts = append(opts, ratelimit.WithStore(ratelimit.NewRedisStore(client, "tracker:ratelimit")))
		closeFn = func() { _ = client.Close() }
		logger.Info("rate limiting backed by redis", zap.String("addr", redisAddr))
	}

	return ratelimit.NewLimiter(ratelimit.LoadConfig(), opts...), closeFn, nil
}

