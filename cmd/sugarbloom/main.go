package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamau/sugarbloom-api/internal/config"
	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/handler"
	"github.com/kamau/sugarbloom-api/internal/infra/cache"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
	"github.com/kamau/sugarbloom-api/internal/infra/resilience"
	"github.com/kamau/sugarbloom-api/internal/infra/supabase"
	"github.com/kamau/sugarbloom-api/internal/notify"
	"github.com/kamau/sugarbloom-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Float64("price_per_kg", cfg.PricePerKg),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), "sugarbloom-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	galleryCache := cache.New[domain.Gallery](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrentUploads,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	uploadBulkhead := resilience.NewBulkhead(cfg.MaxConcurrentUploads)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)
	authClient := supabase.NewAuth(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
	storageClient := supabase.NewStorage(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		uploadBulkhead,
		logger,
	)

	// --- Notifications ---
	notifyCenter := notify.NewCenter(logger)

	// --- Services ---
	sessionMgr := service.NewSessionManager(authClient, supabaseClient, notifyCenter, metrics, cfg.SiteOrigin, logger)
	catalogSvc := service.NewCatalogService(supabaseClient, galleryCache, metrics, logger)
	orderSvc := service.NewOrderService(supabaseClient, supabaseClient, storageClient, notifyCenter, metrics, cfg.PricePerKg, logger)
	adminSvc := service.NewAdminService(supabaseClient, supabaseClient, storageClient, catalogSvc, notifyCenter, metrics, logger)
	contactSvc := service.NewContactService(notifyCenter, cfg.WhatsAppPhone, logger)
	faqSvc := service.NewFAQService()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionMgr.Start(ctx)
	defer sessionMgr.Close()

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Session: sessionMgr,
		Catalog: catalogSvc,
		Orders:  orderSvc,
		Admin:   adminSvc,
		Contact: contactSvc,
		FAQ:     faqSvc,
		Notify:  notifyCenter,
		Metrics: metrics,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
