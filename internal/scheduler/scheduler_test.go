package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/internal/clock"
	"github.com/condovialabs/condovia/internal/config"
)

type sweepRecorder struct {
	chargedomain.Service

	calls int
	asOf  time.Time
}

func (r *sweepRecorder) MarkOverdueSweep(ctx context.Context, asOf time.Time) (int64, error) {
	r.calls++
	r.asOf = asOf
	return 3, nil
}

// testNodeID gives each test scheduler a distinct snowflake node so two
// schedulers created in the same millisecond cannot share an instanceID.
var testNodeID atomic.Int64

func newTestScheduler(t *testing.T, rdb *redis.Client, svc chargedomain.Service) *Scheduler {
	t.Helper()

	node, err := snowflake.NewNode(testNodeID.Add(1))
	require.NoError(t, err)

	return New(Params{
		Log:   zap.NewNop(),
		Clock: clock.New(),
		Config: config.Config{
			Scheduler: config.SchedulerConfig{
				SweepInterval: time.Hour,
				LockTTL:       time.Minute,
			},
		},
		ChargeSvc: svc,
		Redis:     rdb,
		GenID:     node,
	})
}

func TestSweepRunsWithoutRedis(t *testing.T) {
	recorder := &sweepRecorder{}
	s := newTestScheduler(t, nil, recorder)

	s.runOverdueSweep(context.Background())
	require.Equal(t, 1, recorder.calls)
	require.False(t, recorder.asOf.IsZero())
}

func TestSweepLockExcludesSecondInstance(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	first := &sweepRecorder{}
	second := &sweepRecorder{}
	a := newTestScheduler(t, rdb, first)
	b := newTestScheduler(t, rdb, second)

	ctx := context.Background()
	acquired, release := a.acquireLock(ctx, "condovia:scheduler:overdue_sweep")
	require.True(t, acquired)

	// While a holds the lock, b must skip its tick entirely.
	b.runOverdueSweep(ctx)
	require.Zero(t, second.calls)

	release()

	b.runOverdueSweep(ctx)
	require.Equal(t, 1, second.calls)
}

func TestLockReleaseOnlyRemovesOwnLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	a := newTestScheduler(t, rdb, &sweepRecorder{})
	b := newTestScheduler(t, rdb, &sweepRecorder{})

	ctx := context.Background()
	key := "condovia:scheduler:overdue_sweep"

	acquired, staleRelease := a.acquireLock(ctx, key)
	require.True(t, acquired)

	// Simulate a's TTL expiring while its release closure is still pending.
	mr.FastForward(2 * time.Minute)

	acquired, _ = b.acquireLock(ctx, key)
	require.True(t, acquired)

	staleRelease()

	// b's lock must survive the stale release from a.
	val, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	require.Equal(t, b.instanceID, val)
}

func TestSweepRunsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	recorder := &sweepRecorder{}
	s := newTestScheduler(t, rdb, recorder)

	s.runOverdueSweep(context.Background())
	require.Equal(t, 1, recorder.calls)
}
