package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/dojo/internal/app/bootstrap"
	"github.com/dalemusser/dojo/internal/app/shell"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot, err := bootstrap.NewLogger("warn", false)
	if err != nil {
		return err
	}
	coreCfg, appCfg, err := bootstrap.LoadConfig(boot)
	if err != nil {
		return err
	}
	if err := bootstrap.ValidateConfig(appCfg, boot); err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(appCfg.ShellLogLevel, coreCfg.Env == "dev")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.Build(appCfg, bootstrap.Deps{Notes: notify.NewWriter(os.Stdout)}, logger)
	if err != nil {
		return err
	}
	logger.Debug("dojo shell starting", zap.String("api_base_url", appCfg.APIBaseURL))

	return shell.New(app, os.Stdout, logger).Run(ctx, os.Stdin)
}
