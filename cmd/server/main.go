package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/pokerbank/internal/auth"
	"github.com/mmynk/pokerbank/internal/config"
	"github.com/mmynk/pokerbank/internal/engine"
	"github.com/mmynk/pokerbank/internal/metrics"
	"github.com/mmynk/pokerbank/internal/middleware"
	"github.com/mmynk/pokerbank/internal/notify"
	"github.com/mmynk/pokerbank/internal/service"
	"github.com/mmynk/pokerbank/internal/storage"
	"github.com/mmynk/pokerbank/internal/storage/memory"
	"github.com/mmynk/pokerbank/internal/storage/sqlite"
	"github.com/mmynk/pokerbank/pkg/api"
	"github.com/mmynk/pokerbank/pkg/logging"
)

// eventBuffer is how many events a slow watcher may fall behind by.
const eventBuffer = 64

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWith(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(reg)

	hub := notify.NewHub(eventBuffer)
	eng := engine.New(engine.Options{
		Store:            store,
		Publisher:        hub,
		Metrics:          collector,
		AutoDeductCredit: cfg.AutoDeductCredit,
	})
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewGameService(eng, jwtManager, auth.NewPasscodeAuthenticator(0), hub)

	mux := http.NewServeMux()

	// Auth runs first so the logging interceptor sees the session.
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, api.PublicProcedures),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(collector),
	)
	gamePath, gameHandler := api.NewGameServiceHandler(svc, interceptors)
	mux.Handle(gamePath, gameHandler)

	mux.Handle("GET /join/{code}/qr.png", service.QRHandler(eng, cfg.PublicURL))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(loggedHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Connect server starting",
			"address", cfg.Addr(),
			"public_url", cfg.PublicURL,
			"auto_deduct_credit", cfg.AutoDeductCredit,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.UseMemoryStore() {
		slog.Warn("Using in-memory storage, games are lost on restart")
		return memory.New(), nil
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)
	return store, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
