package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/labsearch/internal/config"
	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/db/engine"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	logpkg "github.com/kailas-cloud/labsearch/internal/logger"
	"github.com/kailas-cloud/labsearch/internal/metrics"
	indexrepo "github.com/kailas-cloud/labsearch/internal/repository/index"
	searchrepo "github.com/kailas-cloud/labsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/labsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/labsearch/internal/usecase/health"
	indexuc "github.com/kailas-cloud/labsearch/internal/usecase/index"
	searchuc "github.com/kailas-cloud/labsearch/internal/usecase/search"
	"github.com/kailas-cloud/labsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting labsearch API server",
		zap.Stringer("build", version.Get()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_driver", cfg.Engine.Driver),
		zap.Strings("engine_addrs", cfg.Engine.Addrs),
	)

	metrics.RegisterSearchMetrics()

	ctx := context.Background()
	eng := openEngine(ctx, cfg, logger)
	if eng != nil {
		defer eng.Close()
	}

	// No engine: searches report it unavailable, document writes are refused.
	suffix := ""
	if eng != nil {
		suffix = eng.ExactSuffix()
	}
	indexes := entity.Indexes(cfg.Search.Indexes...)
	textFields := entity.TextFields(suffix, cfg.Search.TextFields...)

	var (
		searchRepo searchuc.Repository
		indexSvc   *indexuc.Service
		pinger     healthuc.EnginePinger // nil interface, not a typed nil
	)
	if eng != nil {
		searchRepo = searchrepo.New(eng)
		pinger = eng
		indexSvc = indexuc.New(indexrepo.New(eng), indexes,
			append(entity.TextFieldNames(), cfg.Search.TextFields...), logger)

		if cfg.Search.EnsureIndexes {
			created, err := indexSvc.EnsureIndexes(ctx)
			if err != nil {
				logger.Fatal("Failed to ensure indexes", zap.Error(err))
			}
			logger.Info("Indexes ensured", zap.Strings("created", created))
		}
	}

	searchSvc := searchuc.New(searchRepo, indexes, textFields, searchuc.Config{
		PerIndexTimeout: cfg.Search.PerIndexTimeout(),
		OverallTimeout:  cfg.Search.OverallTimeout(),
		MaxWorkers:      cfg.Search.MaxWorkers,
	}, logger)
	healthSvc := healthuc.New(pinger)

	server := chiTransport.NewServer(searchSvc, indexSvc, healthSvc, chiTransport.Pagination{
		DefaultPerPage: cfg.Search.DefaultPerPage,
		MaxPerPage:     cfg.Search.MaxPerPage,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.Strings("indexes", indexes.Names()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openEngine connects to the configured engine, or returns nil when none is configured.
func openEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) db.Engine {
	if len(cfg.Engine.Addrs) == 0 {
		logger.Warn("No search engine configured, searches will report it unavailable")
		return nil
	}

	eng, err := engine.Open(engine.Config{
		Driver:         cfg.Engine.Driver,
		Addrs:          cfg.Engine.Addrs,
		Username:       cfg.Engine.Username,
		Password:       cfg.Engine.Password,
		KeyPrefix:      cfg.Engine.KeyPrefix,
		RequestTimeout: time.Duration(cfg.Engine.RequestTimeout) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create search engine client", zap.Error(err))
	}

	if err := eng.WaitForReady(ctx, time.Duration(cfg.Engine.ReadinessTimeout)*time.Second); err != nil {
		eng.Close()
		logger.Fatal("Search engine not ready", zap.Error(err))
	}
	logger.Info("Connected to search engine")
	return eng
}
