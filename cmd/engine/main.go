// shift-hiring-engine
//
// State machine for the hiring workflow. Exposes a REST API used by the
// Gateway to implement:
//   - application lifecycle (apply → viewed → shortlisted → … → hired)
//   - interview scheduling with slot-conflict detection
//   - hire requests with idempotent chat creation
//   - interview / hire-start reminder sweeps
//
// Publishes lifecycle events to Redis for the notification service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/clients"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/config"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/db"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/events"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/httpapi"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/reminder"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/storage/postgres"
)

const version = "1.0.0"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	window, err := cfg.Window()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	leads, err := cfg.ReminderLeads()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	log.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	apps := postgres.NewApplicationStore(pool)
	interviews := postgres.NewInterviewStore(pool, loc)
	notifier := events.NewRedisPublisher(rdb, log)

	engine := hiring.NewOrchestrator(hiring.Dependencies{
		Applications: apps,
		Interviews:   interviews,
		Jobs:         postgres.NewJobDirectory(pool),
		Gate:         clients.NewGateClient(cfg.BillingURL),
		Chat:         clients.NewChatClient(cfg.ChatServiceURL),
		Notifier:     notifier,
		Lease:        db.NewRedisLease(rdb),
		Window:       window,
		Location:     loc,
		Logger:       log,
	})

	sweeper := reminder.New(reminder.NewStore(apps, interviews), notifier, leads, loc, cfg.Engine.SweepSpec, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	httpapi.NewHandler(engine, log).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", "version", version, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := sweeper.Start(gctx); err != nil {
			return fmt.Errorf("reminder sweeper: %w", err)
		}
		<-gctx.Done()
		sweeper.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "hiring-engine",
		"version": version,
	})
}
