package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/fb-repost-bot/internal/app"
	"github.com/orgball2608/fb-repost-bot/pkg/errors"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"go.uber.org/fx"
)

const (
	startTimeout = 2 * time.Minute
	stopTimeout  = time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logger.New(logger.Opts{Env: os.Getenv("APP_ENV"), SentryDSN: os.Getenv("SENTRY_URL")})
	defer logger.Flush()

	app := fx.New(
		fx.Logger(log),
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),
		app.Module,
	)

	// Start the application
	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		code := errors.ExitCode(err)
		log.Error("Failed to start application", "error", err, "exit_code", code)
		return code
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Shutting down", "signal", sig.String())

	// Gracefully shutdown the application
	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application", "error", err)
		return 1
	}
	return 0
}
