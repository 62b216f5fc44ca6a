package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docbridge-labs/docbridge-go/internal/platform/env"
	"github.com/docbridge-labs/docbridge-go/internal/platform/httpserver"
	"github.com/docbridge-labs/docbridge-go/internal/platform/objectstore"
	"github.com/docbridge-labs/docbridge-go/internal/platform/postgres"
	"github.com/docbridge-labs/docbridge-go/internal/service/doccopy"
	"github.com/docbridge-labs/docbridge-go/internal/storage/filestore"
	"github.com/docbridge-labs/docbridge-go/internal/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err == nil {
		logger.Info("loaded .env file")
	}

	runFile := flag.String("run", "", "execute one copy from a YAML configuration file and exit")
	flag.Parse()

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(2)
	}
	db, err := postgres.Open(ctx, dbCfg)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var files filestore.Store
	filesEnabled, err := env.Bool("DOCBRIDGE_FILESTORE_ENABLED", true)
	if err != nil {
		logger.Error("invalid filestore config", "error", err)
		os.Exit(2)
	}
	if filesEnabled {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid object store config", "error", err)
			os.Exit(2)
		}
		storeClient, err := objectstore.NewMinIOClient(storeCfg)
		if err != nil {
			logger.Error("object store client init failed", "error", err)
			os.Exit(2)
		}
		startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := objectstore.EnsureBucket(startupCtx, storeClient, storeCfg); err != nil {
			cancel()
			logger.Error("object store unavailable", "error", err)
			os.Exit(1)
		}
		cancel()
		files, err = filestore.NewMinioStoreWithClient(storeClient, storeCfg.BucketAttachments)
		if err != nil {
			logger.Error("filestore init failed", "error", err)
			os.Exit(2)
		}
	}

	wfCfg, err := workflow.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid workflow config", "error", err)
		os.Exit(2)
	}
	wfClient, err := workflow.NewClient(wfCfg)
	if err != nil {
		logger.Error("workflow client init failed", "error", err)
		os.Exit(2)
	}

	engine := doccopy.New(doccopy.Deps{
		Database:     doccopy.NewSQLDatabase(db),
		Files:        files,
		Workflow:     wfClient,
		ScopeFactory: doccopy.NewPoolScopeFactory(dbCfg),
		Logger:       logger,
	})
	if engine == nil {
		logger.Error("engine init failed")
		os.Exit(2)
	}

	if *runFile != "" {
		os.Exit(runOnce(ctx, logger, engine, *runFile))
	}

	addr := env.String("COPYD_HTTP_ADDR", ":8085")
	shutdownTimeout, err := env.Duration("COPYD_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}

	api := newCopyAPI(logger, engine)
	router := chi.NewRouter()
	router.Get("/healthz", httpserver.Healthz("copyd"))
	router.Get("/readyz", httpserver.Readyz("copyd", httpserver.ReadinessCheck{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 750*time.Millisecond)
			defer cancel()
			return db.PingContext(checkCtx)
		},
	}))
	api.register(router)

	handler := httpserver.Wrap(logger, router)
	if err := httpserver.Run(ctx, logger, httpserver.Config{
		Service:         "copyd",
		Addr:            addr,
		ShutdownTimeout: shutdownTimeout,
	}, handler); err != nil {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
