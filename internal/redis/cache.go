package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

const dayKeyPrefix = "schedule:day:"

// DayCache keeps the raw appointment list of a day as JSON. Entries are
// member independent; ownership is applied after the read.
type DayCache struct {
	client *redis.Client
	ttl    time.Duration
	loc    *time.Location
}

func NewDayCache(client *redis.Client, ttl time.Duration, loc *time.Location) *DayCache {
	if loc == nil {
		loc = time.UTC
	}
	return &DayCache{client: client, ttl: ttl, loc: loc}
}

func dayKey(day appointment.Date) string {
	return dayKeyPrefix + day.Key()
}

func (c *DayCache) Get(ctx context.Context, day appointment.Date) ([]appointment.Appointment, bool, error) {
	raw, err := c.client.Get(ctx, dayKey(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached day %s: %w", day, err)
	}

	var list []appointment.Appointment
	if err := json.Unmarshal(raw, &list); err != nil {
		// a corrupt entry is a miss; the next Set overwrites it
		_ = c.client.Del(ctx, dayKey(day)).Err()
		return nil, false, nil
	}

	// JSON keeps the offset but not the zone; restore the gym location so
	// wall clock hours stay right
	for i := range list {
		list[i].AppointmentTime = list[i].AppointmentTime.In(c.loc)
		if list[i].CheckInTime != nil {
			t := list[i].CheckInTime.In(c.loc)
			list[i].CheckInTime = &t
		}
	}
	return list, true, nil
}

func (c *DayCache) Set(ctx context.Context, day appointment.Date, list []appointment.Appointment) error {
	if list == nil {
		list = []appointment.Appointment{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode day %s: %w", day, err)
	}
	if err := c.client.Set(ctx, dayKey(day), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache day %s: %w", day, err)
	}
	return nil
}

func (c *DayCache) Invalidate(ctx context.Context, days ...appointment.Date) error {
	if len(days) == 0 {
		return nil
	}
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = dayKey(d)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate days: %w", err)
	}
	return nil
}
