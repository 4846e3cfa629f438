package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filevault/internal/config"
	"filevault/internal/handler"
	"filevault/internal/metrics"
	"filevault/internal/middleware"
	"filevault/internal/service"
	"filevault/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.Store,
		"blob_backend", cfg.BlobBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open repositories and blob store
	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer stores.Close()

	// Wire core services and replay the ledger into the catalog
	svcs, err := service.SetupServices(
		ctx,
		stores.Folders,
		stores.Versions,
		stores.TxManager,
		stores.Blobs,
		service.OptionsFromConfig(cfg),
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to set up services: %v", err)
	}

	logger.Info("services initialized")

	files := svcs.Files
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("filevault")
		collector.TrackLiveFiles(func() float64 {
			return float64(len(svcs.Catalog.List(nil)))
		})
		files = metrics.InstrumentFiles(files, collector)
	}

	// Create handlers
	folderHandler := handler.NewFolderHandler(svcs.Folders, logger)
	fileHandler := handler.NewFileHandler(files, cfg.MaxUploadBytes, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, folderHandler, fileHandler)
	if collector != nil {
		mux.Handle("GET /metrics", collector.Handler())
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Metrics → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	if collector != nil {
		h = middleware.Metrics(collector)(h)
	}
	h = middleware.RequestLogger(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-File-Version", middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // Large uploads
		WriteTimeout:      5 * time.Minute, // Large downloads
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}
