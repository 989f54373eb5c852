package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/iconbg/config"
	"github.com/chaos-io/iconbg/icon"
	"github.com/chaos-io/iconbg/server"
)

const defaultConfigPath = "configs/iconserver.yaml"

func main() {
	configPath := os.Getenv("ICONSERVER_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	gin.SetMode(gin.ReleaseMode)

	store := icon.NewStore(cfg.SourcePath, cfg.IconPath)
	if _, err := store.Refresh(context.Background()); err != nil {
		// 源图片可能稍后才放进来，由定时任务继续重试
		slog.Warn("initial icon refresh failed", "err", err)
	}
	if err := store.Schedule(cfg.RefreshSpec); err != nil {
		log.Fatal("Failed to schedule refresh:", err)
	}
	defer store.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(store, cfg.MaxUploadBytes, cfg.MaxPixels).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}
