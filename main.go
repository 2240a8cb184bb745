package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricepulse/config"
	"pricepulse/internal/api"
	"pricepulse/internal/browser"
	"pricepulse/internal/reconcile"
	"pricepulse/internal/scheduler"
	"pricepulse/internal/scrape"
	"pricepulse/internal/store"
	"pricepulse/logger"
	"pricepulse/services/cache"
	"pricepulse/services/notify"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration: %v", err)
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to open database: %v", err)
	}

	memcache := cache.NewMemcacheService(cfg.MemcacheAddr)
	blocks := cache.NewBlockList(memcache, cfg.BlockWindow)

	notifier := notify.NewRedisNotifier(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMax)
	if err := notifier.Ping(context.Background()); err != nil {
		logger.Warn("Redis unreachable, alert delivery degraded: %v", err)
	}

	nav := newNavigator(cfg)

	extractor := scrape.NewExtractor(nav, blocks, cfg.SnapshotDir)
	searcher := scrape.NewSearcher(nav)

	prices := reconcile.NewPriceReconciler(db, extractor, notifier)
	comparisons := reconcile.NewComparisonReconciler(db, searcher, scrape.DefaultMatchThreshold)

	sched := scheduler.NewService(db, prices, comparisons, cfg)
	if err := sched.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start scheduler: %v", err)
	}

	server := api.NewServer(db, extractor, sched, comparisons)
	go func() {
		if err := server.Listen(cfg.ListenAddr); err != nil {
			logger.Fatal("HTTP server failed: %v", err)
		}
	}()
	logger.Info("Price tracker started on %s (environment: %s)", cfg.ListenAddr, cfg.Environment)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown: %v", err)
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Error("Scheduler shutdown: %v", err)
	}
	if err := nav.Close(ctx); err != nil {
		logger.Error("Browser shutdown: %v", err)
	}
	if err := notifier.Close(); err != nil {
		logger.Error("Notifier shutdown: %v", err)
	}

	logger.Info("Shutdown complete")
}

// newNavigator prefers headless Chrome and falls back to plain HTTP
// fetching when Chrome is disabled or unavailable
func newNavigator(cfg config.Config) browser.Navigator {
	if !cfg.ChromeEnabled {
		logger.Info("Chrome disabled, using HTTP navigation")
		return browser.NewHTTPFallback()
	}

	chrome, err := browser.NewChrome(browser.ChromeConfig{
		NavigationTimeout:  cfg.NavigationTimeout,
		ElementWaitTimeout: cfg.ElementWaitTimeout,
		MaxConcurrentPages: cfg.MaxConcurrentPages,
	})
	if err != nil {
		logger.Warn("Chrome unavailable, falling back to HTTP navigation: %v", err)
		return browser.NewHTTPFallback()
	}
	return chrome
}
