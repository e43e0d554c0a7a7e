package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/watheeq/watheeq-backend/internal/notification"
	"github.com/watheeq/watheeq-backend/internal/request/events"
	"github.com/watheeq/watheeq-backend/internal/request/handler"
	"github.com/watheeq/watheeq-backend/internal/request/repository"
	"github.com/watheeq/watheeq-backend/internal/request/service"
	"github.com/watheeq/watheeq-backend/internal/request/storage"
	"github.com/watheeq/watheeq-backend/internal/request/token"
	"github.com/watheeq/watheeq-backend/internal/verification/extract"
	"github.com/watheeq/watheeq-backend/internal/verification/geo"
	"github.com/watheeq/watheeq-backend/internal/verification/verifier"
	"github.com/watheeq/watheeq-backend/pkg/config"
	"github.com/watheeq/watheeq-backend/pkg/database"
	"github.com/watheeq/watheeq-backend/pkg/httputil"
	"github.com/watheeq/watheeq-backend/pkg/logger"
	"github.com/watheeq/watheeq-backend/pkg/messaging"
)

func main() {
	cfg, err := config.Load("request-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("request-service", cfg.Server.Environment)
	log.Info().Msg("starting Request Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	repo := repository.NewRequestRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database schema")
	}

	// Connect to RabbitMQ. The service runs without it; events are
	// simply dropped.
	var publisher *events.RequestEventPublisher
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, events disabled")
	} else {
		defer rmq.Close()
		publisher, err = events.NewRequestEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	}

	files, err := storage.NewFileStore(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	geocoder := geo.NewClient(&cfg.Geocoding, log.WithComponent("geocoder"))
	reportVerifier := verifier.New(
		extract.NewPDFExtractor(log.WithComponent("pdf")),
		geocoder,
		cfg.Verification,
		log.WithComponent("verifier"),
	)

	downloadTokens := token.NewDownloadTokenManager(cfg.JWT)
	notifier := notification.NewEmailNotifier(cfg.Email, log.WithComponent("email"))

	requestService := service.NewRequestService(
		repo,
		files,
		reportVerifier,
		downloadTokens,
		publisher,
		notifier,
		cfg.Frontend.BaseURL,
		log.WithComponent("service"),
	)

	requestHandler := handler.NewRequestHandler(requestService, log.WithComponent("handler"))

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "request-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"message": "pong"})
	})

	requestHandler.Routes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
