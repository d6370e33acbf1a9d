package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mvavassori/traffic-insights/config"
	"github.com/mvavassori/traffic-insights/db"
	"github.com/mvavassori/traffic-insights/middleware"
	"github.com/mvavassori/traffic-insights/services"
	"github.com/mvavassori/traffic-insights/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open event store", zap.Error(err), zap.String("driver", cfg.StoreDriver))
	}
	defer closeStore()

	deps := Dependencies{
		Store:         store,
		Engine:        services.NewEngine(store),
		Metrics:       middleware.NewMetrics(prometheus.NewRegistry()),
		Logger:        logger,
		ActiveWindow:  cfg.ActiveWindow,
		TopPagesLimit: cfg.TopPagesLimit,
	}

	if cfg.GeoIPPath != "" {
		geoipDB, err := db.CreateGeoIPConnection(cfg.GeoIPPath)
		if err != nil {
			logger.Fatal("Failed to open GeoIP database", zap.Error(err))
		}
		defer geoipDB.Close()
		deps.Geo = geoipDB
		logger.Info("Successfully connected to GeoIP Database")
	}

	router := SetupRouter(deps)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.RecoveryHandler()(handlers.CORS( // cors config
			handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		)(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server is listening", zap.Int("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (services.EventStore, func(), error) {
	var conn *sql.DB
	var err error

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory event store, events are lost on restart")
		return services.NewMemoryStore(), func() {}, nil
	case config.DriverPostgres:
		conn, err = db.CreatePostgresConnection(cfg.Postgres.ConnString())
	default:
		conn, err = db.CreateSQLiteConnection(cfg.SQLitePath)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := db.CreateSchema(conn, cfg.StoreDriver); err != nil {
		conn.Close()
		return nil, nil, err
	}

	logger.Info("Successfully connected to the event store", zap.String("driver", cfg.StoreDriver))
	return services.NewSQLStore(conn), func() { conn.Close() }, nil
}
