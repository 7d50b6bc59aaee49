package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/auth"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/config"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/db"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/events"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/handlers"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/receipt"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/report"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/service"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// app holds the wired server and the resources it must release.
type app struct {
	handler   http.Handler
	store     *db.Store
	publisher events.Publisher
}

func (a *app) Close(ctx context.Context) error {
	a.publisher.Close()
	return a.store.Close(ctx)
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*db.Store, error) {
	switch cfg.DataBackend {
	case "mongo":
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		store, err := db.NewMongoStore(ctx, client, cfg.MongoDB)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
		return store, nil
	default:
		log.Warn("Using in-memory storage; data is lost on restart")
		return db.NewMemoryBackedStore(), nil
	}
}

func newPublisher(cfg *config.Config, log logrus.FieldLogger) events.Publisher {
	if cfg.MQTTBrokerURL == "" {
		return events.NoopPublisher{}
	}
	pub, err := events.NewMQTTPublisher(events.MQTTOptions{
		BrokerURL:   cfg.MQTTBrokerURL,
		ClientID:    cfg.MQTTClientID,
		TopicPrefix: cfg.MQTTTopicPrefix,
	}, log)
	if err != nil {
		// entry writes must not depend on the broker
		log.WithError(err).Warn("MQTT unavailable, entry events disabled")
		return events.NoopPublisher{}
	}
	return pub
}

func newScanner(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) receipt.Scanner {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, receipt scanning disabled")
		return nil
	}
	scanner, err := receipt.NewGeminiScanner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.WithError(err).Error("Failed to create Gemini client, receipt scanning disabled")
		return nil
	}
	return scanner
}

func buildApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is the development default; set it before deploying")
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	publisher := newPublisher(cfg, log)
	loc := cfg.Location()

	entries := service.NewEntryService(store.Entries, publisher, loc, log)
	trucks := service.NewTruckService(store.Trucks, log)
	dashboard := service.NewDashboardService(store.Entries, loc, log)
	generator := report.NewGenerator(store.Entries, loc, log)
	receipts := receipt.NewService(newScanner(ctx, cfg, log), log)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:      handlers.NewAuthHandler(authService, store.Users, log),
		Entries:   handlers.NewEntryHandler(entries),
		Trucks:    handlers.NewTruckHandler(trucks),
		Reports:   handlers.NewReportHandler(generator, log),
		Receipts:  handlers.NewReceiptHandler(receipts),
		Dashboard: handlers.NewDashboardHandler(dashboard),

		Tokens: authService,
		Log:    log,

		CORSOrigins:    cfg.CORSOrigins,
		ScanRateLimit:  cfg.ScanRateLimit,
		ScanRateWindow: cfg.ScanRateWindow,
	})

	return &app{handler: router, store: store, publisher: publisher}, nil
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.WithError(err).Error("Failed to close store")
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
	log.Info("Server stopped")
}
