// cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gorm.io/gorm"

	"rgarchitects/internal/config"
	"rgarchitects/internal/metrics"
	"rgarchitects/internal/user/events"
	userrepository "rgarchitects/internal/user/repository"
	userservice "rgarchitects/internal/user/service"
	userhttp "rgarchitects/internal/user/transport/http"
	"rgarchitects/pkg/db"
	"rgarchitects/pkg/logger"
	"rgarchitects/pkg/middleware"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	zerolog.DefaultContextLogger = &log
	log.Info().Str("addr", cfg.HTTPAddr).Str("db_driver", cfg.DatabaseDriver).Msg("users API starting")

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("database connected")

	// --- ИНИЦИАЛИЗАЦИЯ СЛОЁВ ---
	userRepo := userrepository.NewGormUserRepository(gdb)
	if cfg.AutoMigrate {
		if err := userRepo.AutoMigrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("auto-migrate failed")
		}
		log.Info().Msg("schema migrated")
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("broker", cfg.EventsBroker).Msg("events publisher init failed")
	}

	userService := userservice.NewUserService(userRepo, publisher)
	h := userhttp.NewHandler(userService)

	metrics.InitMetrics()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	done := make(chan struct{})
	go limiter.Run(done)

	// --- РОУТЕР ---
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	r.Use(middleware.MetricsMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(gdb))

	r.Group(func(mr chi.Router) {
		if cfg.MetricsUser != "" {
			mr.Use(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPasswordHash))
		}
		mr.Handle("/metrics", promhttp.Handler())
	})

	r.Group(func(ar chi.Router) {
		ar.Use(limiter.Middleware)
		ar.Use(middleware.ValidateRequest)
		ar.Use(middleware.DBSession(gdb))
		h.Register(ar)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown на сигналы ОС
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig

		log.Info().Str("signal", s.String()).Msg("shutdown signal received")
		shutdownServer(server, cfg.ShutdownTimeout, &log)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	<-stopped

	close(done)
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("events publisher close failed")
	}
	if err := db.Close(gdb); err != nil {
		log.Error().Err(err).Msg("database close failed")
	}
	log.Info().Msg("server stopped")
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsBroker {
	case "", "none":
		return events.NopPublisher{}, nil
	case "nats":
		return events.NewNATSPublisher(cfg.NATSURL)
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, errors.New("unknown events broker " + cfg.EventsBroker)
	}
}

func healthHandler(gdb *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if err := db.Ping(ctx, gdb); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("health check: database unreachable")
			status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func shutdownServer(server *http.Server, timeout time.Duration, log *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
