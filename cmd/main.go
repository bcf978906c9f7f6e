package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/api"
	"github.com/akylbek/payment-system/paydock-notification/internal/commerce"
	"github.com/akylbek/payment-system/paydock-notification/internal/config"
	"github.com/akylbek/payment-system/paydock-notification/internal/events"
	"github.com/akylbek/payment-system/paydock-notification/internal/gateway"
	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/repository"
	"github.com/akylbek/payment-system/paydock-notification/internal/service"
	"github.com/akylbek/payment-system/paydock-notification/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := telemetry.InitTelemetry(cfg.Telemetry); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Paydock notification service")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	journal := repository.NewNotificationJournalRepository(db)
	if err := journal.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	var continuations interfaces.FraudContinuationStore
	switch cfg.Continuation.Backend {
	case config.BackendPostgres:
		store := repository.NewPostgresContinuationStore(db)
		if err := store.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize continuation table", zap.Error(err))
		}
		if cfg.Continuation.ReapAfter > 0 {
			go reapContinuations(ctx, store, cfg.Continuation)
		}
		continuations = store
	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			telemetry.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		continuations = repository.NewRedisContinuationStore(redisClient, cfg.Continuation.TTL)
	}

	// Outcome events are optional
	var publisher interfaces.EventPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		telemetry.Logger.Warn("KAFKA_BROKERS not set, notification outcomes will not be published")
	}

	commerceClient := commerce.NewClient(ctx, cfg.Commerce)
	reconciler := service.NewReconciler(service.Dependencies{
		Aggregates:    commerce.NewAggregateGateway(commerceClient),
		Continuations: continuations,
		Gateway:       gateway.NewClient(cfg.Gateway),
		Publisher:     publisher,
		Journal:       journal,
		Logger:        telemetry.Logger,
	})

	r := api.NewRouter(api.RouterDeps{
		Processor: reconciler,
		Journal:   journal,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		telemetry.Logger.Info("Paydock notification service starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}

// reapContinuations purges fraud continuations whose completion never
// arrived.
func reapContinuations(ctx context.Context, store *repository.PostgresContinuationStore, cfg config.ContinuationConfig) {
	ticker := time.NewTicker(cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Purge(ctx, cfg.ReapAfter)
			if err != nil {
				telemetry.Logger.Error("Failed to purge fraud continuations", zap.Error(err))
				continue
			}
			if removed > 0 {
				telemetry.Logger.Info("Purged stale fraud continuations", zap.Int64("removed", removed))
			}
		}
	}
}
