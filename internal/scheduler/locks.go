package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when this instance still owns it, so a
// worker that overran the TTL cannot release a lock another worker now holds.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// acquireLock takes a best-effort distributed lock. Without redis configured
// the scheduler assumes a single instance and always proceeds.
func (s *Scheduler) acquireLock(ctx context.Context, key string) (bool, func()) {
	if s.redis == nil {
		return true, func() {}
	}

	ttl := s.cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	ok, err := s.redis.SetNX(ctx, key, s.instanceID, ttl).Result()
	if err != nil {
		// Redis outage: run unlocked, the sweep is idempotent anyway.
		return true, func() {}
	}
	if !ok {
		return false, func() {}
	}

	return true, func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), s.redis, []string{key}, s.instanceID).Err()
	}
}
