package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/classbooking/config"
	"github.com/Domenick1991/classbooking/internal/bootstrap"
	"github.com/Domenick1991/classbooking/internal/email"
	"github.com/Domenick1991/classbooking/internal/kafka"
	"github.com/robfig/cron/v3"
)

// generateTimeout bounds one scheduled generation run.
const generateTimeout = 5 * time.Minute

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

	generator := bootstrap.NewGenerator(cfg, deps)
	runGenerator := func() {
		runCtx, cancel := context.WithTimeout(ctx, generateTimeout)
		defer cancel()
		if _, err := generator.Generate(runCtx, cfg.Generator.DaysAhead); err != nil {
			log.Printf("generate occurrences error: %v", err)
		}
	}

	scheduler := cron.New(
		cron.WithLocation(cfg.HomeLocation()),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := scheduler.AddFunc(cfg.Generator.Cron, runGenerator); err != nil {
		log.Fatalf("schedule generator %q: %v", cfg.Generator.Cron, err)
	}
	scheduler.Start()
	log.Printf("generator scheduled %q (%s), %d days ahead", cfg.Generator.Cron, cfg.Studio.HomeTimezone, cfg.Generator.DaysAhead)

	if cfg.Generator.RunOnStart {
		go runGenerator()
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		emailSender := email.NewSender()
		go func() {
			if err := consumer.Consume(ctx, kafka.BookingEventHandler(emailSender.Send)); err != nil {
				log.Printf("consumer stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Printf("shutting down")
	<-scheduler.Stop().Done()
}
