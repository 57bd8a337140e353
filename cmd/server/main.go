package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashseek/internal/api"
	"dashseek/internal/cache"
	"dashseek/internal/config"
	"dashseek/internal/dash"
	"dashseek/internal/logger"

	"golang.org/x/time/rate"
)

func main() {
	// 1. Parse command-line arguments
	listenAddr := flag.String("l", "", "HTTP listen address (overrides the config file)")
	logLevel := flag.String("L", "", "Log level (error, warn, info, debug); overrides the config file")
	configFile := flag.String("c", "", "Path to the YAML config file")
	flag.Parse()

	// 2. Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.NewLogger("error").Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	// 3. Initialize logger
	log := logger.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	log.Infof("Starting DASH segment resolver...")
	log.Infof("Log level set to: %s", cfg.Log.Level)

	// 4. Initialize services
	opts := api.Options{
		Resolver:  dash.NewResolver(log),
		UserAgent: cfg.UserAgent,
		Logger:    log,
	}
	if cfg.Fetch.AllowRemote {
		opts.Client = dash.NewClientWithRetries(log, cfg.Fetch.Timeout, cfg.Fetch.Attempts)
	}

	var manifestCache *cache.ManifestCache
	if cfg.Cache.Enabled {
		manifestCache, err = cache.New(log, cfg.Cache.Size, cfg.Cache.TTL)
		if err != nil {
			log.Errorf("Failed to initialize manifest cache: %v", err)
			os.Exit(1)
		}
		manifestCache.Start()
		opts.Cache = manifestCache
	}

	if cfg.RateLimit.RPS > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
		log.Infof("Rate limiting API to %v requests/s (burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// 5. Set up and run the HTTP server with graceful shutdown
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Could not listen on %s: %v", cfg.Listen, err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Infof("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if manifestCache != nil {
		manifestCache.Stop()
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
		os.Exit(1)
	}

	log.Infof("Server exited gracefully")
}
