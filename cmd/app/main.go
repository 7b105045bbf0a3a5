package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/classbooking/config"
	"github.com/Domenick1991/classbooking/internal/bootstrap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeDeps()

	if err := bootstrap.Run(ctx, cfg, bootstrap.NewServices(cfg, deps)); err != nil {
		log.Printf("server error: %v", err)
		closeDeps()
		os.Exit(1)
	}
}
