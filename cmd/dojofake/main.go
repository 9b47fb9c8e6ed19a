package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dalemusser/dojo/internal/app/bootstrap"
	"github.com/dalemusser/dojo/internal/app/fakeapi"
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

	boot, err := bootstrap.NewLogger("info", false)
	if err != nil {
		return err
	}
	coreCfg, appCfg, err := bootstrap.LoadConfig(boot)
	if err != nil {
		return err
	}
	logger, err := bootstrap.NewLogger("info", coreCfg.Env == "dev")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fake := fakeapi.New(logger, []byte(appCfg.FakeTokenKey))
	if appCfg.FakeSeed {
		demo := fake.Seed()
		logger.Info("seeded demo data", zap.String("user_id", demo), zap.String("email", "demo@dojo.dev"))
	}

	srv := &http.Server{
		Addr:              appCfg.FakeAddr,
		Handler:           fake.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake Dojo API listening", zap.String("addr", appCfg.FakeAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down fake Dojo API")
	return srv.Shutdown(shutdownCtx)
}
