package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/screwyprof/valreg/pkg/logger"
	"github.com/screwyprof/valreg/pkg/pgxdb"
	"github.com/screwyprof/valreg/pkg/sqlitedb"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/registrar/store/pgxstore"
	"github.com/screwyprof/valreg/registrar/store/sqlitestore"
	"github.com/screwyprof/valreg/web/config"
	"github.com/screwyprof/valreg/web/handler"
)

var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Load configuration
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	// Prepare context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "Validator Registrar API Service starting",
		slog.String("version", version),
		slog.String("date", date),
		slog.String("driver", cfg.DBDriver),
	)

	// Initialize the configured persistence backend
	store, storeCloser, err := newStore(ctx, cfg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize storage backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer storeCloser()

	svc := registrar.NewService(store)

	// Create HTTP server
	mux := http.NewServeMux()

	// Register handlers
	handler.NewRequests(svc).AddRoutes(mux)
	handler.NewStats(svc).AddRoutes(mux)
	handler.NewAudit(svc).AddRoutes(mux)
	handler.NewProcessedValidators(svc, cfg.AccessPassword).AddRoutes(mux)

	// Wrap with logging middleware
	loggedMux := logger.NewMiddleware(log)(mux)

	// Create server address
	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)

	server := &http.Server{
		Addr:    addr,
		Handler: loggedMux,
	}

	// Start server in a goroutine
	go func() {
		log.InfoContext(ctx, "Server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.InfoContext(ctx, "Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.InfoContext(ctx, "Server exited gracefully")
}

// newStore builds the persistence backend selected by DB_DRIVER: the
// embedded SQLite store (schema self-initialized) or the networked
// PostgreSQL store (schema managed by the migrator).
func newStore(ctx context.Context, cfg config.Config) (registrar.Store, func(), error) {
	switch cfg.DBDriver {
	case "postgres":
		pool, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, closer := pgxstore.New(pool)
		return store, closer, nil

	default:
		db, err := sqlitedb.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, closer := sqlitestore.New(db)
		if err := store.InitSchema(ctx); err != nil {
			closer()
			return nil, nil, err
		}
		return store, closer, nil
	}
}
