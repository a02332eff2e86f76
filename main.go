package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db/mongodb"
	"github.com/vidtube/backend/internal/db/postgres"
	"github.com/vidtube/backend/internal/handler"
	"github.com/vidtube/backend/internal/lib/logger"
	"github.com/vidtube/backend/internal/lib/logger/sl"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/service"
	"github.com/vidtube/backend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.App.Env)
	if cfg.App.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := setupTracing(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("failed to flush traces", sl.Err(err))
		}
	}()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("failed to close store", sl.Err(err))
		}
	}()

	uploader, err := media.NewS3Uploader(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("media uploader: %w", err)
	}

	tokens, err := service.NewTokenService(store, service.TokenConfigFrom(cfg.Auth))
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	cookieCfg, err := service.NewCookieConfig(cfg.Auth)
	if err != nil {
		return fmt.Errorf("cookie config: %w", err)
	}

	accounts := service.NewAccountService(log, store, tokens, uploader)
	temp := media.TempDir(cfg.Media.TempDir)
	cookies := handler.SessionCookies{
		Config:     cookieCfg,
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	}

	router := handler.NewRouter(handler.RouterDeps{
		Log:           log,
		Auth:          accounts,
		CORSOrigins:   cfg.App.CORSOrigins,
		MaxBodyBytes:  cfg.Media.MaxUploadMB << 20,
		Users:         handler.NewUserHandler(log, accounts, cookies, temp),
		Videos:        handler.NewVideoHandler(log, service.NewVideoService(log, store, store, uploader), temp),
		Comments:      handler.NewCommentHandler(log, service.NewCommentService(log, store, store)),
		Likes:         handler.NewLikeHandler(log, service.NewLikeService(log, store, store)),
		Playlists:     handler.NewPlaylistHandler(log, service.NewPlaylistService(log, store, store)),
		Subscriptions: handler.NewSubscriptionHandler(log, service.NewSubscriptionService(log, store, store)),
		Tweets:        handler.NewTweetHandler(log, service.NewTweetService(log, store)),
	})

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", srv.Addr), slog.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func setupTracing(ctx context.Context, cfg config.Config, log *slog.Logger) (func(context.Context) error, error) {
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint != "" {
		log.Info("tracing enabled", slog.String("endpoint", cfg.Telemetry.Endpoint))
	}
	return shutdown, nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (service.Store, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close(ctx)
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info("connected to postgres")
		return pg, nil
	default:
		mg, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("mongodb: %w", err)
		}
		log.Info("connected to mongodb", slog.String("database", cfg.Mongo.Database))
		return mg, nil
	}
}
