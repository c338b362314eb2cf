package checkin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is one entry of a member's check-in history.
type Record struct {
	MemberID      int64     `json:"memberId"`
	Timestamp     time.Time `json:"timestamp"`
	Code          string    `json:"code"`
	Location      string    `json:"location"`
	AppointmentID *int64    `json:"appointmentId,omitempty"`
}

// History stores check-ins, newest first.
type History interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, memberID int64, limit int) ([]Record, error)
}

const maxHistory = 100

type MemoryHistory struct {
	mu      sync.RWMutex
	records map[int64][]Record
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{records: make(map[int64][]Record)}
}

func (h *MemoryHistory) Append(_ context.Context, rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := append([]Record{rec}, h.records[rec.MemberID]...)
	if len(list) > maxHistory {
		list = list[:maxHistory]
	}
	h.records[rec.MemberID] = list
	return nil
}

func (h *MemoryHistory) List(_ context.Context, memberID int64, limit int) ([]Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	list := h.records[memberID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return append([]Record(nil), list...), nil
}

// RedisHistory keeps each member's history in a capped Redis list so every
// API instance sees the same cooldown window.
type RedisHistory struct {
	client *redis.Client
}

func NewRedisHistory(client *redis.Client) *RedisHistory {
	return &RedisHistory{client: client}
}

func historyKey(memberID int64) string {
	return "checkin:history:" + strconv.FormatInt(memberID, 10)
}

func (h *RedisHistory) Append(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode check-in: %w", err)
	}
	key := historyKey(rec.MemberID)
	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, maxHistory-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append check-in: %w", err)
	}
	return nil
}

func (h *RedisHistory) List(ctx context.Context, memberID int64, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raws, err := h.client.LRange(ctx, historyKey(memberID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
