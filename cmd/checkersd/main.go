package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ethanwaldo/checkers/internal/adapter/presenter"
	"github.com/ethanwaldo/checkers/internal/advisor"
	appcfg "github.com/ethanwaldo/checkers/internal/config"
	"github.com/ethanwaldo/checkers/internal/gateway"
	"github.com/ethanwaldo/checkers/internal/match"
	"github.com/ethanwaldo/checkers/internal/msgcat"
	"github.com/ethanwaldo/checkers/internal/obslog"
	"github.com/ethanwaldo/checkers/internal/render"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.L().Sync()

	manager, err := match.NewManager(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		obslog.L().Fatal("match manager init", zap.Error(err))
	}
	defer manager.Close()

	var repo match.Repository
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		repo, err = match.OpenRepository(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			obslog.L().Fatal("archive repository init", zap.Error(err))
		}
	} else {
		obslog.L().Warn("no DATABASE_URL, archiving to memory")
		repo = match.NewMemoryRepository()
	}
	manager.AttachRepository(repo)

	var suggester advisor.Suggester
	if cfg.AdvisorBaseURL != "" {
		suggester = advisor.NewClient(cfg.AdvisorBaseURL,
			advisor.WithTimeout(cfg.AdvisorTimeout),
			advisor.WithRetry(cfg.AdvisorRetries),
		)
	} else {
		obslog.L().Warn("no ADVISOR_BASE_URL, hints disabled")
	}

	cat, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		obslog.L().Fatal("message catalog init", zap.Error(err))
	}

	srv := gateway.NewServer(gateway.Options{
		Manager:      manager,
		Suggester:    suggester,
		Renderer:     render.NewSVGBoardRenderer(),
		Formatter:    presenter.NewFormatter(cat),
		Repository:   repo,
		RedName:      cfg.RedName,
		BlackName:    cfg.BlackName,
		HistoryLimit: cfg.HistoryLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		obslog.L().Info("shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			obslog.L().Error("gateway failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obslog.L().Warn("shutdown error", zap.Error(err))
	}
}
