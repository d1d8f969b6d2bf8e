// Package scheduler runs the periodic billing jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/internal/clock"
	"github.com/condovialabs/condovia/internal/config"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Config    config.Config
	ChargeSvc chargedomain.Service
	Redis     *redis.Client `optional:"true"`
	GenID     *snowflake.Node
}

type Scheduler struct {
	log       *zap.Logger
	clock     clock.Clock
	cfg       config.SchedulerConfig
	chargeSvc chargedomain.Service
	redis     *redis.Client
	// instanceID identifies this worker as the lock owner.
	instanceID string
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:       p.Log.Named("scheduler"),
		clock:     p.Clock,
		cfg:       p.Config.Scheduler,
		chargeSvc: p.ChargeSvc,
		redis:     p.Redis,
		instanceID: p.GenID.Generate().String(),
	}
}

// RunForever ticks until the context is cancelled. The sweep itself is
// idempotent, so a missed or doubled tick is harmless.
func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	s.log.Info("scheduler started", zap.Duration("sweep_interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run once at startup so a freshly deployed instance does not wait a
	// full interval before catching up on overdue charges.
	s.runOverdueSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOverdueSweep(ctx)
		}
	}
}

func (s *Scheduler) runOverdueSweep(ctx context.Context) {
	acquired, release := s.acquireLock(ctx, "condovia:scheduler:overdue_sweep")
	if !acquired {
		s.log.Debug("overdue sweep lock held elsewhere, skipping tick")
		return
	}
	defer release()

	asOf := s.clock.Now(ctx)
	swept, err := s.chargeSvc.MarkOverdueSweep(ctx, asOf)
	if err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
		return
	}
	s.log.Info("overdue sweep completed", zap.Int64("swept", swept), zap.Time("as_of", asOf))
}
