package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"resourceguardian/internal/amqp"
	"resourceguardian/internal/config"
	"resourceguardian/internal/log"
	"resourceguardian/internal/services"
	"resourceguardian/internal/storage"
)

func main() {
	// Load .env for local development; absent in containers.
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting payments worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	transactions := services.NewTransactionService(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return amqpClient.ConsumePayments(ctx, func(msg *amqp.PaymentMessage) error {
			t, err := transactions.RecordFromPaymentNotification(ctx, msg.UserID, msg.Notification)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to record payment",
					log.FieldUserID, msg.UserID, "error", err)
				return err
			}
			logger.InfoContext(ctx, "Recorded payment",
				log.FieldUserID, msg.UserID, "transaction_id", t.ID, log.FieldAmount, t.Amount.String())
			return nil
		})
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
