package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/classbooking/config"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	scheduleTTL time.Duration
	loc         *time.Location
}

func NewRedisCache(cfg config.RedisConfig, scheduleTTL time.Duration, loc *time.Location) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		scheduleTTL: scheduleTTL,
		loc:         loc,
	}
}

// GetSchedule returns nil without error on a cache miss.
func (c *RedisCache) GetSchedule(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error) {
	data, err := c.client.Get(ctx, c.scheduleKey(weekStart)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var classes []domain.ClassInstance
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (c *RedisCache) SetSchedule(ctx context.Context, weekStart time.Time, classes []domain.ClassInstance) error {
	if classes == nil {
		classes = []domain.ClassInstance{}
	}
	payload, err := json.Marshal(classes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.scheduleKey(weekStart), payload, c.scheduleTTL).Err()
}

// InvalidateWeekOf drops the cached week that contains t.
func (c *RedisCache) InvalidateWeekOf(ctx context.Context, t time.Time) error {
	return c.client.Del(ctx, c.scheduleKey(t)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) scheduleKey(t time.Time) string {
	return ScheduleKey(t, c.loc)
}

// ScheduleKey names the cache entry for the studio week containing t.
func ScheduleKey(t time.Time, loc *time.Location) string {
	return "cache:schedule:" + domain.WeekStart(t.In(loc)).Format("2006-01-02")
}
