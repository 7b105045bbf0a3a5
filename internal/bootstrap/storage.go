package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/classbooking/config"
	"github.com/Domenick1991/classbooking/internal/cache"
	"github.com/Domenick1991/classbooking/internal/kafka"
	"github.com/Domenick1991/classbooking/internal/repository"
	"github.com/Domenick1991/classbooking/internal/repository/memory"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects the configured storage driver, the schedule cache and the
// event producer. The returned func releases all of them.
func Open(ctx context.Context, cfg *config.Config) (Deps, func(), error) {
	var (
		deps    Deps
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage.Driver {
	case "memory":
		log.Printf("WARNING: using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		deps = Deps{
			Store:     store,
			Templates: store.Templates(),
			Classes:   store.Classes(),
			Bookings:  store.Bookings(),
			Profiles:  store.Profiles(),
		}
	default:
		pool, err := openPostgres(ctx, cfg.Database)
		if err != nil {
			return Deps{}, nil, err
		}
		closers = append(closers, pool.Close)
		deps = Deps{
			Store:     repository.NewStore(pool, cfg.Booking.MaxTxRetries),
			Templates: repository.NewTemplateRepository(pool),
			Classes:   repository.NewClassRepository(pool),
			Bookings:  repository.NewBookingRepository(pool),
			Profiles:  repository.NewProfileRepository(pool),
		}
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.ScheduleCacheTTL(), cfg.HomeLocation())
		closers = append(closers, func() { _ = redisCache.Close() })
		deps.Cache = redisCache
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := producer.CheckConnection(checkCtx); err != nil {
			log.Printf("WARNING: kafka unavailable, events will fail until it is: %v", err)
		}
		cancel()
		closers = append(closers, func() { _ = producer.Close() })
		deps.Producer = producer
	}

	return deps, closeAll, nil
}

func openPostgres(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if db.MaxConns > 0 {
		poolCfg.MaxConns = db.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}
