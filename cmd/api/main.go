// Package main is the entry point for the real-time API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/storyverse/realtime-platform/internal/config"
	"github.com/storyverse/realtime-platform/internal/dispatch"
	"github.com/storyverse/realtime-platform/internal/handler"
	"github.com/storyverse/realtime-platform/internal/ledger"
	"github.com/storyverse/realtime-platform/internal/middleware"
	natsclient "github.com/storyverse/realtime-platform/internal/nats"
	"github.com/storyverse/realtime-platform/internal/registry"
	"github.com/storyverse/realtime-platform/internal/service"
	"github.com/storyverse/realtime-platform/internal/store"
	"github.com/storyverse/realtime-platform/internal/worker"
	"github.com/storyverse/realtime-platform/pkg/logger"
	"github.com/storyverse/realtime-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting real-time API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "realtime-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the durable store
	db, err := store.Open(cfg.DBPath, log)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Fan-out plumbing
	reg := registry.New()
	dispatcher := dispatch.New(reg, log)
	pool := worker.New(cfg.WorkerPoolSize)
	led := ledger.New(db)

	// Optional cross-instance bridge
	var nc *natsclient.Client
	var bridge *natsclient.Bridge
	if cfg.NATSURL != "" {
		nc, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()

		bridge = natsclient.NewBridge(nc, log)
		dispatcher.SetBridge(bridge)
		if err := bridge.Start(func(topic string, payload json.RawMessage) {
			dispatcher.DispatchLocal(topic, payload)
		}); err != nil {
			log.Error("failed to start fan-out bridge", zap.Error(err))
			os.Exit(1)
		}
		defer bridge.Stop()
	}

	// Initialize services
	sink := service.NewSink(log)
	socialSvc := service.NewSocialService(db, led, sink, log)
	commentSvc := service.NewCommentService(db, led, sink, log)
	chatSvc := service.NewChatService(db, log)
	notificationSvc := service.NewNotificationService(db, log)
	contentSvc := service.NewContentService(db, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, nc)
	socketHandler := handler.NewSocketHandler(reg, dispatcher, pool, led,
		socialSvc, commentSvc, chatSvc, notificationSvc, cfg.SendQueueSize, log)
	restHandler := handler.NewRestHandler(contentSvc, notificationSvc, cfg.JWTSecret, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Socket channels
	r.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Get("/chat", socketHandler.Chat)
		r.Get("/posts/{postID}/comments", socketHandler.Comments)
		r.Get("/likes", socketHandler.Likes)
		r.Get("/follows", socketHandler.Follows)
		r.Get("/notifications", socketHandler.Notifications)
	})

	// Seed REST surface
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", restHandler.CreateUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Get("/users/{userID}", restHandler.GetUser)
			r.Post("/posts", restHandler.CreatePost)
			r.Get("/posts/{postID}", restHandler.GetPost)
			r.Get("/posts/{postID}/comments", restHandler.ListPostComments)
			r.Get("/notifications", restHandler.ListNotifications)
		})
	})

	// Create HTTP server. Read and write timeouts are left unset so
	// long-lived socket connections are not cut off; the header timeout
	// still bounds slow handshakes.
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
