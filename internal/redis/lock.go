package redisclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("member lock not acquired")
)

// Locker serialises check-ins per member so two scans of the same badge
// cannot both pass the cooldown check.
type Locker interface {
	WithMemberLock(ctx context.Context, memberID int64, fn func(ctx context.Context) error) error
}

type redisMemberLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMemberLocker creates a locker that uses a per member Redis key
func NewRedisMemberLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisMemberLocker{
		client: client,
		ttl:    ttl,
	}
}

func lockKey(memberID int64) string {
	return fmt.Sprintf("lock:checkin:member:%d", memberID)
}

func (l *redisMemberLocker) WithMemberLock(ctx context.Context, memberID int64, fn func(ctx context.Context) error) error {
	key := lockKey(memberID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire member lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		// release even if ctx was cancelled while fn ran
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisMemberLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release member lock: %w", err)
	}
	return nil
}

// LocalLocker is the single-process fallback used when Redis is not configured.
type LocalLocker struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[int64]struct{})}
}

func (l *LocalLocker) WithMemberLock(ctx context.Context, memberID int64, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if _, busy := l.held[memberID]; busy {
		l.mu.Unlock()
		return ErrLockNotAcquired
	}
	l.held[memberID] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, memberID)
		l.mu.Unlock()
	}()

	return fn(ctx)
}
