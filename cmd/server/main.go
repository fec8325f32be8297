package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veridex/internal/audit"
	"veridex/internal/evidence/adapters"
	"veridex/internal/jwtauth"
	"veridex/internal/pipeline"
	pipelinemetrics "veridex/internal/pipeline/metrics"
	"veridex/internal/platform/config"
	"veridex/internal/platform/httpserver"
	"veridex/internal/platform/logger"
	"veridex/internal/platform/middleware"
	"veridex/internal/platform/postgres"
	platformredis "veridex/internal/platform/redis"
	"veridex/internal/reconcile/handler"
	"veridex/internal/storage"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional infrastructure: each returns nil when unconfigured, and
	// the pipeline degrades to in-process equivalents.
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var store storage.Store
	if db != nil {
		pg := storage.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	} else {
		store = storage.NewMemoryStore()
	}

	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		publisher = kafka
	} else {
		publisher = audit.NewMemoryPublisher()
	}
	defer publisher.Close()

	stageOne, stageTwo := buildStages(cfg, redisClient, log)

	svc := pipeline.New(stageOne, stageTwo, cfg.Scoring, cfg.Blend, cfg.Thresholds,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(pipelinemetrics.New()),
		pipeline.WithAuditPublisher(audit.NewDecisionEmitter(publisher)),
		pipeline.WithRunStore(store),
	)

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "veridex", "veridex-api")
	reconcileHandler := handler.New(svc, store, log)

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestID)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtauth.NewServiceAdapter(jwtService), log))
		reconcileHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting veridex", "addr", cfg.Addr,
		"postgres", db != nil,
		"redis", redisClient != nil,
		"kafka", len(cfg.KafkaBrokers) > 0,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStages assembles the evidence adapter groups. Stage one carries the
// identity-critical sources; stage two presence and location, with web
// search as the listing-search fallback. A configured Redis client wraps
// each adapter in the evidence cache.
func buildStages(cfg config.Server, redisClient *platformredis.Client, log *slog.Logger) (stageOne, stageTwo []adapters.Group) {
	wrap := func(a adapters.Adapter) adapters.Adapter {
		if redisClient == nil {
			return a
		}
		return adapters.NewCachedAdapter(a, redisClient.Client, adapters.EvidenceCacheTTL, log)
	}

	if cfg.RegistryURL != "" {
		stageOne = append(stageOne, adapters.PrimaryOnly(wrap(adapters.NewRegistryAdapter(cfg.RegistryURL, cfg.AdapterTimeout))))
	}
	if cfg.LicenseURL != "" {
		stageOne = append(stageOne, adapters.PrimaryOnly(wrap(adapters.NewLicenseAdapter(cfg.LicenseURL, cfg.AdapterTimeout))))
	}
	if cfg.GeocodeURL != "" {
		stageTwo = append(stageTwo, adapters.PrimaryOnly(wrap(adapters.NewGeocodeAdapter(cfg.GeocodeURL, cfg.AdapterTimeout))))
	}
	if cfg.ListingSearchURL != "" {
		primary := wrap(adapters.NewListingSearchAdapter(cfg.ListingSearchURL, cfg.AdapterTimeout))
		if cfg.WebSearchURL != "" {
			stageTwo = append(stageTwo, adapters.WithFallback(primary, wrap(adapters.NewWebSearchAdapter(cfg.WebSearchURL, cfg.AdapterTimeout))))
		} else {
			stageTwo = append(stageTwo, adapters.PrimaryOnly(primary))
		}
	} else if cfg.WebSearchURL != "" {
		stageTwo = append(stageTwo, adapters.PrimaryOnly(wrap(adapters.NewWebSearchAdapter(cfg.WebSearchURL, cfg.AdapterTimeout))))
	}
	return stageOne, stageTwo
}
