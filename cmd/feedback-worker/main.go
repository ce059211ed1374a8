// Package main 评分反馈 worker 入口
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/infrastructure/messaging"
	"scholar-rec-api/internal/wire"
	"scholar-rec-api/pkg/logger"
	"scholar-rec-api/pkg/tracer"

	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting feedback-worker",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "feedback-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	worker, cleanup, err := wire.InitializeFeedbackWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize feedback worker", err)
	}
	defer cleanup()

	hostname, _ := os.Hostname()
	consumer := messaging.NewConsumer(worker.DataLayer.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamRatingEvents,
		Group:         messaging.ConsumerGroupFeedbackWorker,
		ConsumerName:  fmt.Sprintf("feedback-worker-%s-%d", hostname, os.Getpid()),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		DedupTTL:      cfg.Messaging.RedisStream.DedupTTL,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.MessageTypeRating, func(ctx context.Context, msg *messaging.Message) error {
		var event messaging.RatingEvent
		if err := msg.UnmarshalPayload(&event); err != nil {
			return fmt.Errorf("failed to unmarshal rating event: %w", err)
		}
		return worker.Feedback.Rate(ctx, event.RecommendationID, event.Rating)
	})

	go consumer.MonitorDLQ(ctx, 100)

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	log.Info("feedback-worker started", "stream", string(messaging.StreamRatingEvents))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down feedback-worker...")
	consumer.Stop()
	log.Info("feedback-worker exited")
}
