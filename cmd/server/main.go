// Command server runs the issue digest HTTP API: it generates issue
// summaries through the provider rotation pool, translates them through the
// fallback chain, caches both and streams results to subscribers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/tbourn/go-issue-digest/docs"
	"github.com/tbourn/go-issue-digest/internal/config"
	httpapi "github.com/tbourn/go-issue-digest/internal/http"
	"github.com/tbourn/go-issue-digest/internal/notify"
	"github.com/tbourn/go-issue-digest/internal/observability"
	"github.com/tbourn/go-issue-digest/internal/repo"
	"github.com/tbourn/go-issue-digest/internal/services"
	"github.com/tbourn/go-issue-digest/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title                      Issue Digest API
// @version                    1.0
// @description                Generates, translates and caches issue summaries and streams them over SSE.
// @BasePath                   /api/v1
// @securityDefinitions.apikey AdminBearer
// @in                         header
// @name                       Authorization
// @description                "Bearer <jwt>" signed with ADMIN_JWT_SECRET and carrying role=admin.
func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	sysutil.ConfigureLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, ver)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, ver); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config, ver string) error {
	gen := cfg.Generation

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver,
		attribute.String("digest.source_lang", gen.SourceLang.Code()),
		attribute.String("digest.target_lang", gen.TargetLang.Code()),
	)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	dsn := cfg.DBPath
	if cfg.DBDriver == repo.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	db, err := repo.Open(cfg.DBDriver, dsn)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	generator := buildGenerator(gen.Providers, gen.ProviderTimeout)
	translator := buildTranslator(gen.Providers, gen.ProviderTimeout)
	if generator.Size() == 0 {
		log.Warn().Msg("no summary providers configured; every generation will fail")
	}
	if translator.Size() == 0 {
		log.Warn().Msg("no translation providers configured; target-language results fall back to source text")
	}
	log.Info().
		Int("summary_combinations", generator.Size()).
		Int("translation_groups", translator.Size()).
		Str("source_lang", gen.SourceLang.Code()).
		Str("target_lang", gen.TargetLang.Code()).
		Msg("providers ready")

	hub := notify.NewHub(16)
	defer hub.Close()

	var notifier notify.Notifier = hub
	if cfg.Redis.Addr != "" {
		rdb, err := notify.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; notifications stay in-process")
		} else {
			defer closeRedis(rdb)
			if err := notify.Forward(ctx, rdb, cfg.Redis.Channel, hub); err != nil {
				return err
			}
			notifier = &notify.RedisNotifier{Client: rdb, Channel: cfg.Redis.Channel}
		}
	}

	cache := &services.ArtifactCache{DB: db}
	orch := &services.Orchestrator{
		Issues:          repo.IssueStore{DB: db},
		Cache:           cache,
		Generator:       generator,
		Translator:      translator,
		Notifier:        notifier,
		Source:          gen.SourceLang,
		Target:          gen.TargetLang,
		MaxOutputTokens: gen.MaxOutputTokens,
		Timeout:         gen.RunTimeout,
		Concurrency:     gen.Concurrency,
	}

	if cfg.AdminJWTSecret == "" {
		log.Warn().Msg("ADMIN_JWT_SECRET is empty; admin routes are unauthenticated")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{Artifacts: orch, Cache: cache, Events: hub}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Close the hub first so open event streams end and Shutdown can drain.
	hub.Close()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := orch.Close(sctx); err != nil {
		log.Warn().Err(err).Msg("background runs did not finish in time")
	}
	return nil
}

func closeRedis(rdb *goredis.Client) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
