package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/internal/app"
	"github.com/fastygo/peoplesearch/internal/cli"
	"github.com/fastygo/peoplesearch/internal/config"
	"github.com/fastygo/peoplesearch/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 2
	}

	level := cfg.Log.Level
	if _, set := os.LookupEnv("LOG_LEVEL"); !set {
		level = "warn"
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    level,
		Encoding: "console",
		Output:   os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 2
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, cli.Runtime{
		Open: func(ctx context.Context) (*app.App, error) {
			a, err := app.New(ctx, cfg, zapLogger)
			if err != nil {
				zapLogger.Debug("client setup failed", zap.Error(err))
			}
			return a, err
		},
	}, os.Args[1:])
}
