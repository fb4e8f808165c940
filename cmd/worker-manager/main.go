// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cabs-workers/internal/booking"
	"cabs-workers/internal/common/aws"
	"cabs-workers/internal/common/camunda"
	"cabs-workers/internal/common/config"
	"cabs-workers/internal/common/database"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/observability"
	"cabs-workers/internal/location"
	"cabs-workers/pkg/registry"

	hc "cabs-workers/internal/workers/trip/hold-cab"
	nb "cabs-workers/internal/workers/trip/notify-booking"
	rl "cabs-workers/internal/workers/trip/resolve-location"
	sc "cabs-workers/internal/workers/trip/search-cabs"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	zapLog.Info("Activity registry loaded", zap.Strings("taskTypes", reg.TaskTypes()))

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared domain services ---
	resolver := location.NewResolver(
		location.NewPlacesClient(location.PlacesConfig{
			BaseURL: cfg.APIs.Places.BaseURL,
			APIKey:  cfg.APIs.Places.APIKey,
			Types:   cfg.APIs.Places.Types,
			Timeout: config.GetDuration(cfg.APIs.Places.Timeout),
		}, log),
		location.NewDetailsClient(location.DetailsConfig{
			BaseURL: cfg.APIs.LocationDetails.BaseURL,
			Timeout: config.GetDuration(cfg.APIs.LocationDetails.Timeout),
		}, log),
		location.ReturnAsData{},
		cfg.Resolution.MaxAttempts,
		log,
	)

	cabs := booking.NewClient(booking.ClientConfig{
		SearchURL: cfg.APIs.Cabs.SearchURL,
		HoldURL:   cfg.APIs.Cabs.HoldURL,
		Timeout:   config.GetDuration(cfg.APIs.Cabs.Timeout),
	}, log)

	sessions := booking.NewSessionStore(rdb.Client, cfg.Sessions.TTLDuration(), cfg.Sessions.KeyPrefix, log)
	records := booking.NewRecordStore(pg.DB)

	// --- Notification channels (optional) ---
	var emailSender nb.EmailSender
	var smsSender nb.SMSSender
	if cfg.Notifications.Email.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = ses
	}
	if cfg.Notifications.SMS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		smsSender = sns
	}

	// --- Register trip workers ---
	var workers []*camunda.Worker

	if wcfg := config.GetWorkerConfig(cfg, rl.TaskType); wcfg.Enabled {
		handler := rl.NewHandler(
			&rl.Config{Timeout: time.Duration(wcfg.Timeout) * time.Millisecond},
			resolver, log,
		)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), rl.TaskType, wcfg, handler.Handle, zapLog))
	}

	if wcfg := config.GetWorkerConfig(cfg, sc.TaskType); wcfg.Enabled {
		handler := sc.NewHandler(
			&sc.Config{Timeout: time.Duration(wcfg.Timeout) * time.Millisecond},
			resolver, cabs, sessions, log,
		)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), sc.TaskType, wcfg, handler.Handle, zapLog))
	}

	if wcfg := config.GetWorkerConfig(cfg, hc.TaskType); wcfg.Enabled {
		handler := hc.NewHandler(
			&hc.Config{Timeout: time.Duration(wcfg.Timeout) * time.Millisecond},
			cabs, sessions, records, log,
		)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), hc.TaskType, wcfg, handler.Handle, zapLog))
	}

	if wcfg := config.GetWorkerConfig(cfg, nb.TaskType); wcfg.Enabled {
		handler := nb.NewHandler(
			&nb.Config{
				Timeout:      time.Duration(wcfg.Timeout) * time.Millisecond,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				SenderID:     cfg.Notifications.SMS.SenderID,
			},
			emailSender, smsSender, log,
		)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), nb.TaskType, wcfg, handler.Handle, zapLog))
	}

	zapLog.Info("Trip workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	zapLog.Info("Worker manager stopped gracefully")
}
