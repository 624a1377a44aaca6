package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the entity store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	// Optional Redis catalog cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect redis", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}

		redisAdapter := storage.NewRedisAdapter(rdb)
		// listings cached by a previous run may predate catalog changes
		if removed, err := redisAdapter.InvalidateCatalog(ctx); err != nil {
			logger.Warn("failed to flush catalog cache", slog.Any("error", err))
		} else {
			logger.Info("flushed catalog cache", slog.Int("keys", removed))
		}

		store = storage.NewCachedStore(store, redisAdapter, cfg.CatalogCacheTTL, logger)
		logger.Info("catalog cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.CatalogCacheTTL))
	}

	// Initialize services
	catalogService := service.NewCatalogService(store, logger)
	salesService := service.NewSalesService(store, logger)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterStorefrontServer(grpcServer, handler.NewGRPCHandler(catalogService, salesService, logger))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", slog.String("addr", cfg.GRPCAddr), slog.Any("error", err))
		os.Exit(1)
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", slog.Any("error", err))
		}
	}()

	// Initialize HTTP server
	gin.SetMode(cfg.GinMode)
	httpHandler := handler.NewHTTPHandler(catalogService, salesService, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", slog.Any("error", err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	if rdb != nil {
		rdb.Close()
	}
	logger.Info("connections closed")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.EntityStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("connected to mysql")
		return storage.NewMySQLAdapter(db), func() { db.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("connected to postgres")
		return storage.NewPostgresAdapter(pool), pool.Close, nil

	default:
		logger.Warn("using empty in-memory store")
		return storage.NewMemoryStore(), func() {}, nil
	}
}
