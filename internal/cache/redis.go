package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/salonware/salonbooking/config"
	"github.com/salonware/salonbooking/internal/domain"
)

type RedisCache struct {
	client      *redis.Client
	scheduleTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, scheduleTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		scheduleTTL: scheduleTTL,
	}
}

// AcquireSlotLock takes a short-lived advisory lock on a staff member's slot.
// It narrows the window between the optimistic conflict check and the insert;
// the exclusion constraint in postgres is the authoritative guard.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, staffID string, start time.Time, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(staffID, start), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, staffID string, start time.Time) error {
	return c.client.Del(ctx, slotLockKey(staffID, start)).Err()
}

func (c *RedisCache) GetSchedule(ctx context.Context, staffID string, day time.Time) ([]domain.Reservation, error) {
	data, err := c.client.Get(ctx, scheduleKey(staffID, day)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var reservations []domain.Reservation
	if err := json.Unmarshal(data, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *RedisCache) SetSchedule(ctx context.Context, staffID string, day time.Time, reservations []domain.Reservation) error {
	payload, err := json.Marshal(reservations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, scheduleKey(staffID, day), payload, c.scheduleTTL).Err()
}

func (c *RedisCache) InvalidateSchedule(ctx context.Context, staffID string, day time.Time) error {
	return c.client.Del(ctx, scheduleKey(staffID, day)).Err()
}

func slotLockKey(staffID string, start time.Time) string {
	return fmt.Sprintf("lock:staff:%s:slot:%d", staffID, start.Unix())
}

func scheduleKey(staffID string, day time.Time) string {
	return fmt.Sprintf("cache:schedule:%s:%s", staffID, day.Format("2006-01-02"))
}
