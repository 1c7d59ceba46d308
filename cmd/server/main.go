package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papergen/internal/api"
	"papergen/internal/app/generation"
	"papergen/internal/app/navigation"
	"papergen/internal/app/service"
	"papergen/internal/app/worker"
	"papergen/internal/common/security"
	"papergen/internal/domain/repository"
	"papergen/internal/platform/config"
	"papergen/internal/platform/database"
	"papergen/internal/platform/logger"
	"papergen/internal/platform/redisdb"

	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Configuration and logging
	cfg := config.Load()
	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer appLog.Sync()

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// 2. Backing stores
	var (
		db  *sql.DB
		rdb *redis.Client
	)
	if cfg.StoreBackend == config.StoreBackendPostgres {
		db, err = database.Connect(rootCtx, cfg.DBConnStr)
		if err != nil {
			appLog.Fatal("database connection failed", "error", err)
		}
		defer db.Close()
		if err := database.Migrate(rootCtx, db); err != nil {
			appLog.Fatal("database migration failed", "error", err)
		}
		appLog.Info("database connected")
	}
	if cfg.StoreBackend == config.StoreBackendRedis || cfg.RedisAddr != "" {
		rdb, err = redisdb.Connect(rootCtx, redisdb.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		switch {
		case err == nil:
			defer rdb.Close()
			appLog.Info("redis connected", "addr", cfg.RedisAddr)
		case cfg.StoreBackend == config.StoreBackendRedis:
			appLog.Fatal("redis connection failed", "error", err)
		default:
			appLog.Warn("redis unavailable, using in-process generation locks", "error", err)
		}
	}

	blobs, closeBlobs := openBlobStore(rootCtx, cfg, db, rdb, appLog)
	defer closeBlobs()

	// 3. Repositories
	storeRepo := repository.NewStoreRepository(blobs, appLog)
	var accounts repository.AccountRepository
	if db != nil {
		accounts = repository.NewPgAccountRepository(db)
	} else {
		accounts = repository.NewBlobAccountRepository(blobs)
	}

	// 4. Services
	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	lib := service.NewLibrary(storeRepo, appLog)
	settingsService := service.NewSettingsService(lib)
	paperService := service.NewPaperService(lib)
	bankService := service.NewBankService(lib)

	registry := navigation.NewRegistry(settingsService, appLog)
	defer registry.Close()

	authService := service.NewAuthService(accounts, settingsService, tokens, registry, appLog)
	sessionService := service.NewSessionService(authService, paperService, lib, appLog)
	shareService := service.NewShareService(cfg.BaseURL, paperService, authService, appLog)

	// 5. Generation worker
	var gen generation.Generator
	gemini, err := generation.NewGeminiGenerator(rootCtx, cfg.GenAIAPIKey, cfg.GenAIModel, appLog)
	switch {
	case err == nil:
		gen = gemini
	case errors.Is(err, generation.ErrNotConfigured):
		appLog.Warn("GENAI_API_KEY not set, paper generation is disabled")
		gen = generation.Disabled()
	default:
		appLog.Fatal("could not create generation client", "error", err)
	}

	var locker worker.Locker = worker.NewLocalLocker()
	if rdb != nil {
		locker = worker.NewRedisLocker(rdb)
	}
	generationWorker := worker.NewGenerationWorker(gen, paperService, registry, locker, worker.Options{
		Workers:    cfg.GenerationWorkers,
		QueueDepth: cfg.GenerationQueueDepth,
		Timeout:    cfg.GenerationTimeout,
		LockTTL:    cfg.GenerationLockTTL,
		RetryDelay: cfg.RateLimitRetryDelay,
		MaxRetries: cfg.RateLimitMaxRetries,
	}, appLog)
	registry.SetRunner(generationWorker)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		generationWorker.Start(rootCtx)
	}()

	// 6. Router and HTTP server
	router := api.NewRouter(api.Services{
		Auth:     authService,
		Settings: settingsService,
		Papers:   paperService,
		Bank:     bankService,
		Sessions: sessionService,
		Share:    shareService,
		Tokens:   tokens,
	}, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		appLog.Info("server starting", "port", cfg.APIPort, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("could not listen", "port", cfg.APIPort, "error", err)
		}
	}()

	<-stop

	appLog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown failed", "error", err)
	}

	rootCancel()
	<-workerDone
	appLog.Info("server and worker stopped")
}

// openBlobStore returns the blob store selected by STORE_BACKEND and a
// function releasing it.
func openBlobStore(ctx context.Context, cfg *config.Config, db *sql.DB, rdb *redis.Client, log *logger.Logger) (repository.BlobStore, func()) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		return repository.NewPgBlobStore(db), func() {}
	case config.StoreBackendRedis:
		return repository.NewRedisBlobStore(rdb), func() {}
	case config.StoreBackendMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryBlobStore(), func() {}
	case config.StoreBackendFile:
		files, err := repository.NewFileBlobStore(cfg.StoreDir, log)
		if err != nil {
			log.Fatal("could not open store directory", "dir", cfg.StoreDir, "error", err)
		}
		files.Start(ctx)
		return files, func() {
			if err := files.Close(); err != nil {
				log.Warn("closing file store", "error", err)
			}
		}
	default:
		log.Fatal("unknown STORE_BACKEND", "backend", cfg.StoreBackend)
		return nil, nil
	}
}
