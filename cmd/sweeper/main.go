package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-crowdfund/internal/bootstrap"
	"github.com/feral-file/ff-crowdfund/internal/config"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	once       = flag.Bool("once", false, "Run a single sweep cycle and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "crowdfund-sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	rt, err := bootstrap.Open(ctx, bootstrap.Options{
		Storage:  cfg.Storage,
		Database: cfg.Database,
		NATS:     cfg.NATS,
		Token:    cfg.Token,
		Ethereum: cfg.Ethereum,
		Ledger:   cfg.Ledger,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open ledger", zap.Error(err))
	}
	defer rt.Close()

	refundSweeperConfig := &sweeper.RefundSweeperConfig{
		WorkerPoolSize:       cfg.RefundSweeper.Worker.WorkerPoolSize,
		QueueSize:            cfg.RefundSweeper.Worker.WorkerQueueSize,
		CycleInterval:        cfg.RefundSweeper.Interval,
		RetryInitialInterval: cfg.RefundSweeper.RetryInitialInterval,
		RetryMaxElapsedTime:  cfg.RefundSweeper.RetryMaxElapsedTime,
		PurgeExpired:         cfg.RefundSweeper.PurgeExpired,
	}
	refundSweeper := sweeper.NewRefundSweeper(refundSweeperConfig, rt.Ledger, rt.Store, rt.Clock)

	logger.InfoCtx(ctx, "Initialized refund sweeper",
		zap.Int("worker_pool_size", refundSweeperConfig.WorkerPoolSize),
		zap.Duration("interval", refundSweeperConfig.CycleInterval),
		zap.Bool("purge_expired", refundSweeperConfig.PurgeExpired),
	)

	if *once {
		result, err := refundSweeper.RunOnce(ctx)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Sweep cycle failed"))
			return
		}
		logger.InfoCtx(ctx, "Sweep cycle finished",
			zap.Int32("projects", result.Projects),
			zap.Int32("refund_failures", result.RefundFailures),
		)
		return
	}

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := refundSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// A refund pass in flight finishes its current transfer before stopping
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := refundSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
