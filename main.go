package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/ratelimit"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/pkg/logger"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	defer func() { _ = zlog.Sync() }()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		zlog.Fatal("failed to create application", zap.Error(err))
	}

	apiModule := api.NewModule(cfg.HTTP.Port, zlog)

	// Order: independent modules first, then dependent modules.
	if cfg.RateLimit.Enabled() {
		rateLimiter := ratelimit.NewModule(cfg.RateLimit, zlog)
		apiModule.SetRateLimiter(rateLimiter)
		app.Register(rateLimiter)
	}
	app.Register(auth.NewModule(cfg.Store, cfg.JWT, zlog))
	app.Register(task.NewModule(cfg.Store, zlog))
	app.Register(activity.NewModule(zlog))
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		zlog.Fatal("failed to start application", zap.Error(err))
	}

	zlog.Info("task tracker started",
		zap.String("env", cfg.Environment),
		zap.Int("port", cfg.HTTP.Port),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("rate_limiting", cfg.RateLimit.Enabled()))

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				zlog.Info("graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	zlog.Info("application exited", zap.Int("exit_code", exitCode))
	_ = zlog.Sync()
	os.Exit(exitCode)
}
