package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/chess-vn/slgo/internal/app/server"
	"github.com/chess-vn/slgo/internal/archive"
	"github.com/chess-vn/slgo/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		logging.Init(logging.Config{})
		logging.Fatal("failed to load config", zap.Error(err))
	}
	if err := logging.Init(cfg.Log); err != nil {
		logging.Fatal("failed to init logging", zap.Error(err))
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		logging.Fatal("failed to open archive", zap.Error(err))
	}
	defer records.Close()

	if err := server.NewServer(cfg, records).Start(ctx); err != nil {
		logging.Error("game server exited", zap.Error(err))
		return
	}
	logging.Info("game server stopped")
}
