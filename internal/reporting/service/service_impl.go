package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	reportingdomain "github.com/condovialabs/condovia/internal/reporting/domain"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) reportingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("reporting.service"),
	}
}

type statusRollupRow struct {
	Status      chargedomain.ChargeStatus
	Count       int64
	Total       decimal.Decimal
	Outstanding decimal.Decimal
	Received    decimal.Decimal
}

// Stats aggregates the ledger in one grouped query, so the rollup reflects a
// single consistent snapshot even while charges are being written.
func (s *Service) Stats(ctx context.Context, filter reportingdomain.StatsFilter) (*reportingdomain.Stats, error) {
	query := `SELECT status,
	       COUNT(*) AS count,
	       SUM(CASE WHEN status = ? THEN paid_amount ELSE amount END) AS total,
	       SUM(amount - paid_amount) AS outstanding,
	       SUM(paid_amount) AS received
	FROM charges`
	args := []any{chargedomain.StatusPaid}

	if filter.CompetencyPeriod != nil {
		query += ` WHERE competency_period = ?`
		args = append(args, *filter.CompetencyPeriod)
	}
	query += ` GROUP BY status`

	var rows []statusRollupRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &reportingdomain.Stats{
		CountByStatus:    make(map[chargedomain.ChargeStatus]int64, len(rows)),
		SumByStatus:      make(map[chargedomain.ChargeStatus]decimal.Decimal, len(rows)),
		OutstandingTotal: decimal.Zero,
		CollectedTotal:   decimal.Zero,
	}
	for _, row := range rows {
		stats.CountByStatus[row.Status] = row.Count
		stats.SumByStatus[row.Status] = row.Total

		switch row.Status {
		case chargedomain.StatusPending, chargedomain.StatusOverdue:
			stats.OutstandingTotal = stats.OutstandingTotal.Add(row.Outstanding)
			stats.CollectedTotal = stats.CollectedTotal.Add(row.Received)
		case chargedomain.StatusPaid:
			stats.CollectedTotal = stats.CollectedTotal.Add(row.Received)
		}
	}
	return stats, nil
}
