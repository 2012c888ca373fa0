package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/eventboard/internal/application"
	"github.com/example/eventboard/internal/config"
	httptransport "github.com/example/eventboard/internal/http"
	"github.com/example/eventboard/internal/logging"
	"github.com/example/eventboard/internal/persistence/sqlite"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLogger.Error("failed to build logger", "error", err)
		os.Exit(1)
	}

	app, err := newApp(ctx, cfg, logger, time.Now)
	if err != nil {
		logger.Error("failed to start eventboard", "error", err, "error_kind", application.ErrorKind(err))
		os.Exit(1)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("eventboard API listening",
		"addr", server.Addr,
		"admin_emails", len(cfg.AdminEmails),
		"token_ttl", cfg.TokenTTL.String(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// app is the assembled server: storage, services and the HTTP handler.
type app struct {
	Handler http.Handler
	Events  *application.EventService
	storage *sqlite.Storage
}

func (a *app) Close() error {
	return a.storage.Close()
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time) (*app, error) {
	tokens, err := application.NewTokenManager(application.TokenConfig{
		Secret:         cfg.JWTSecret,
		TTL:            cfg.TokenTTL,
		ClockTolerance: cfg.ClockTolerance,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx, logger); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	events := newEventStoreAdapter(storage)

	authService := application.NewAuthService(application.AuthServiceDeps{
		Credentials: newCredentialStoreAdapter(storage),
		Tokens:      tokens,
		Admins:      application.NewAdminPolicy(cfg.AdminEmails),
		Now:         now,
		Logger:      logger,
	})
	eventService := application.NewEventService(events, nil, logger)
	subscriptionService := application.NewSubscriptionService(newSubscriptionStoreAdapter(storage), events, now, logger)

	if cfg.SeedFile != "" {
		seed, err := loadSeedFile(cfg.SeedFile)
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		if _, err := eventService.Seed(ctx, seed); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("seed events: %w", err)
		}
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, logger),
		Events:        httptransport.NewEventHandler(eventService, logger),
		Subscriptions: httptransport.NewSubscriptionHandler(subscriptionService, logger),
		Time:          httptransport.NewTimeHandler(now),
		DebugToken:    httptransport.NewDebugTokenHandler(now, logger),
		Authenticator: authService,
		Logger:        logger,
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	return &app{Handler: handler, Events: eventService, storage: storage}, nil
}

type seedEvent struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Place       string          `json:"place"`
	Image       string          `json:"image"`
	Price       json.RawMessage `json:"price"`
	Description string          `json:"description"`
}

// loadSeedFile reads a JSON array of events. Prices may be strings or numbers.
func loadSeedFile(path string) ([]application.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var raw []seedEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	events := make([]application.Event, 0, len(raw))
	for _, item := range raw {
		events = append(events, application.Event{
			ID:          item.ID,
			Name:        item.Name,
			Date:        item.Date,
			Place:       item.Place,
			Image:       item.Image,
			Price:       rawPrice(item.Price),
			Description: item.Description,
		})
	}
	return events, nil
}

func rawPrice(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return trimmed
}
