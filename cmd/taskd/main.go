package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"taskd/internal/cache"
	"taskd/internal/config"
	"taskd/internal/db"
	"taskd/internal/handlers"
	taskdotel "taskd/internal/otel"
	"taskd/internal/service"
	"taskd/internal/store"
	"taskd/internal/token"
	"taskd/pkg/bus"
	gos3 "taskd/pkg/s3"
)

const serviceName = "taskd"

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taskd",
		Short:         "Todo backend with JWT sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			return db.Migrate(ctx, pool)
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	otelShutdown, err := taskdotel.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	orm, err := db.ConnectORM(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect orm: %w", err)
	}
	defer func() {
		if err := db.CloseORM(orm); err != nil {
			log.Error().Err(err).Msg("close orm")
		}
	}()

	redisCache, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}()

	tokens, err := token.NewManager([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	var eventBus *bus.Bus
	if cfg.NATSURL != "" {
		eventBus, err = bus.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer eventBus.Close()
	}

	var s3Client *gos3.Client
	if cfg.AttachmentBucket != "" {
		s3Client, err = gos3.NewClientFromEnv()
		if err != nil {
			return fmt.Errorf("init s3: %w", err)
		}
	}

	users := store.NewUsers(orm)
	todos := store.NewTodos(orm, pool)

	api, err := handlers.New(handlers.Options{
		Auth:   service.NewAuth(users, redisCache, tokens, cfg.AccessTTL(), cfg.RefreshTTL()),
		Users:  service.NewUsers(users),
		Todos:  service.NewTodos(todos, redisCache),
		Tokens: tokens,
		Bus:    eventBus,
		S3:     s3Client,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, pool)
		},
		Config: handlers.Config{
			AllowedOrigins:   cfg.AllowedOrigins,
			RateLimitPerMin:  cfg.RateLimitPerMin,
			AttachmentBucket: cfg.AttachmentBucket,
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting taskd")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}

	return nil
}
