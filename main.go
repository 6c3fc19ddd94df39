package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itinera/booking"
	"itinera/budget"
	"itinera/config"
	"itinera/db"
	"itinera/globals"
	"itinera/groups"
	"itinera/itinerary"
	"itinera/journey"
	"itinera/ledger"
	"itinera/logging"
	"itinera/notify"
	"itinera/places"
	"itinera/ratelim"
	"itinera/rdx"
	"itinera/routes"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address and duration.
func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

type backends struct {
	itineraries journey.Repository
	units       ledger.Store
	catalog     places.Catalog
	groups      groups.Store
	notifier    journey.Notifier
	close       func(ctx context.Context)
}

func memoryBackends(cfg *config.Config, hub *notify.Hub, logger *zap.Logger) (*backends, error) {
	catalog := places.NewMemoryCatalog()
	if cfg.PlacesFile != "" {
		seed, err := places.LoadYAML(cfg.PlacesFile)
		if err != nil {
			return nil, err
		}
		catalog.Put(seed...)
		logger.Info("seeded places", zap.Int("count", len(seed)))
	}
	return &backends{
		itineraries: journey.NewMemoryRepo(),
		units:       ledger.NewMemoryStore(),
		catalog:     catalog,
		groups:      groups.NewMemoryStore(),
		notifier:    notify.Local{Hub: hub},
		close:       func(context.Context) {},
	}, nil
}

func mongoBackends(ctx context.Context, cfg *config.Config, hub *notify.Hub, logger *zap.Logger) (*backends, error) {
	colls, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		return nil, err
	}
	client, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = colls.Disconnect(ctx)
		return nil, err
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker := notify.NewWorker(client, cfg.NotifyChannel, hub, logger)
	go func() {
		if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("notification worker stopped", zap.Error(err))
		}
	}()

	return &backends{
		itineraries: journey.NewMongoRepo(colls.Itineraries),
		units:       ledger.NewMongoStore(colls.InventoryUnits, colls.Availability),
		catalog:     places.NewMongoCatalog(colls.Places),
		groups:      groups.NewMongoStore(colls.Groups),
		notifier:    notify.NewPublisher(client, cfg.NotifyChannel, logger),
		close: func(ctx context.Context) {
			stopWorker()
			closeRedis(client, logger)
			if err := colls.Disconnect(ctx); err != nil {
				logger.Warn("mongodb disconnect failed", zap.Error(err))
			}
		},
	}, nil
}

func closeRedis(client *redis.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("redis close failed", zap.Error(err))
	}
}

// setupRouter wires services over the given backends and registers every route.
func setupRouter(b *backends, rates budget.Rates, hub *notify.Hub, rateLimiter *ratelim.RateLimiter, logger *zap.Logger) (*httprouter.Router, *journey.Service) {
	led := ledger.New(b.units, logger)
	watchers := booking.NewWatchers()
	budgets := budget.NewService(budget.NewEstimator(led, rates), logger)
	inventory := &booking.WatchedLedger{Ledger: led, Watchers: watchers}
	svc := journey.NewService(b.itineraries, b.catalog, inventory, budgets, b.notifier, nil, logger)
	companions := groups.NewService(b.groups, svc, logger)
	svc.SetGroups(companions)

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, routes.Handlers{
		Itineraries:   &itinerary.Handlers{Service: svc},
		Inventory:     &booking.Handlers{Ledger: led, Watchers: watchers},
		Groups:        &groups.Handlers{Service: companions},
		Places:        &places.Handlers{Catalog: b.catalog},
		Notifications: notify.Handler(hub, logger),
	}, rateLimiter)
	return router, svc
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	globals.JwtSecret = []byte(cfg.JwtSecret)

	hub := notify.NewHub()
	go hub.Run()

	var b *backends
	if cfg.Storage == "memory" {
		b, err = memoryBackends(cfg, hub, logger)
	} else {
		b, err = mongoBackends(context.Background(), cfg, hub, logger)
	}
	if err != nil {
		logger.Fatal("backend setup failed", zap.String("storage", cfg.Storage), zap.Error(err))
	}

	rates, err := budget.LoadRates(cfg.RatesFile)
	if err != nil {
		logger.Fatal("load rates failed", zap.Error(err))
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router, svc := setupRouter(b, rates, hub, rateLimiter, logger)

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(logger, securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		logger.Info("stopping notification hub")
		hub.Stop()
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Port), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	svc.Wait()
	b.close(ctx)

	logger.Info("server stopped cleanly")
}
