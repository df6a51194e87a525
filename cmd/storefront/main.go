package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/catalog"
	"github.com/aura-atelier/storefront/internal/checkout"
	"github.com/aura-atelier/storefront/internal/discount"
	"github.com/aura-atelier/storefront/internal/httpapi"
	"github.com/aura-atelier/storefront/internal/kv"
	"github.com/aura-atelier/storefront/internal/order"
	"github.com/aura-atelier/storefront/internal/payment"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	CatalogDBPath   string
	MigrationsPath  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "catalog.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Catalog: sqlite repository behind the in-memory index
	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Printf("Catalog database ready at %s", cfg.CatalogDBPath)

	index := catalog.NewIndex(repo)

	// Persistent key/value store: redis when reachable, otherwise a
	// process-local store so the demo still runs without one.
	var store kv.Store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s (%v), falling back to in-memory store", cfg.RedisAddr, err)
		store = kv.NewMemoryStore()
	} else {
		defer redisClient.Close()
		log.Printf("Connected to redis at %s", cfg.RedisAddr)
		store = kv.NewRedisStore(redisClient, "storefront")
	}

	cartStore, err := cart.NewStore(ctx, store)
	if err != nil {
		log.Fatalf("Failed to load cart: %v", err)
	}

	ledger, err := discount.NewLedger(ctx, store)
	if err != nil {
		log.Fatalf("Failed to load discount ledger: %v", err)
	}

	validator, err := checkout.NewFieldValidator()
	if err != nil {
		log.Fatalf("Failed to set up validation: %v", err)
	}
	wizard := checkout.NewWizard(cartStore, validator)

	orders, err := order.NewService(ctx, store, cartStore, ledger)
	if err != nil {
		log.Fatalf("Failed to load order history: %v", err)
	}

	gateway := payment.NewSimulator(payment.RandomOutcome{})

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Index:          index,
		Cart:           cartStore,
		Ledger:         ledger,
		Wizard:         wizard,
		Gateway:        gateway,
		Orders:         orders,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
