package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartmem "github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	cartpg "github.com/dwikikusuma/storefront/internal/cart/infra/postgres"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogmem "github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	catalogpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderadapter "github.com/dwikikusuma/storefront/internal/order/infra/adapter"
	ordermem "github.com/dwikikusuma/storefront/internal/order/infra/memory"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"

	"github.com/dwikikusuma/storefront/internal/cache"
	"github.com/dwikikusuma/storefront/internal/httpapi"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/dwikikusuma/storefront/pkg/redisconn"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service:   "storefront-api",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	catalogSvc, cartSvc, orderSvc := buildServices(cfg, log)

	store := buildCache(ctx, cfg, log)

	api := httpapi.New(httpapi.Config{
		JWTSecret:  cfg.JWTSecret,
		Dev:        cfg.AppEnv == "dev",
		ListingTTL: cfg.ListingCacheTTL,
		SearchTTL:  cfg.SearchCacheTTL,
		CartTTL:    cfg.CartCacheTTL,
		OrderTTL:   cfg.OrderCacheTTL,
	}, log, catalogSvc, cartSvc, orderSvc, store)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

func buildServices(cfg config.Config, log *slog.Logger) (*catalogapp.Service, *cartapp.Service, *orderapp.Service) {
	var (
		catalogSvc *catalogapp.Service
		cartRepo   cartapp.CartRepo
		orderRepo  orderapp.OrderRepo
	)

	switch cfg.StorageDriver {
	case "postgres":
		db, err := postgres.Open(postgres.Config{
			Host: cfg.Postgres.Host,
			Port: cfg.Postgres.Port,
			User: cfg.Postgres.User,
			Pass: cfg.Postgres.Pass,
			DB:   cfg.Postgres.DB,
		})
		if err != nil {
			log.Error("db open failed", slog.Any("err", err))
			os.Exit(1)
		}
		catalogSvc = catalogapp.NewService(catalogpg.NewProductRepo(db), catalogpg.NewCategoryRepo(db))
		cartRepo = cartpg.NewCartRepo(db)
		orderRepo = orderpg.NewOrderRepo(db)
	default:
		catalogSvc = catalogapp.NewService(catalogmem.NewProductStore(), catalogmem.NewCategoryStore())
		cartRepo = cartmem.NewCartRepo()
		orderRepo = ordermem.NewOrderRepo()
	}

	cartSvc := cartapp.NewService(cartRepo, cartadapter.NewCatalogServiceReader(catalogSvc))
	orderSvc := orderapp.NewService(
		orderRepo,
		orderadapter.NewCartServiceReader(cartSvc),
		orderadapter.NewCatalogInventory(catalogSvc),
		orderapp.WithRefundWindow(cfg.RefundWindow),
	)
	return catalogSvc, cartSvc, orderSvc
}

func buildCache(ctx context.Context, cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.NewMemory()
	}
	client, err := redisconn.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, using in-process cache", slog.Any("err", err))
		return cache.NewMemory()
	}
	return cache.NewRedis(client)
}
