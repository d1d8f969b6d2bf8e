// Package domain defines the read-side rollups fed to dashboards.
package domain

import (
	"context"

	"github.com/shopspring/decimal"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
)

type StatsFilter struct {
	CompetencyPeriod *string
}

// Stats is computed in a single grouped query so counts and sums always
// describe the same snapshot of the ledger.
type Stats struct {
	CountByStatus map[chargedomain.ChargeStatus]int64           `json:"count_by_status"`
	SumByStatus   map[chargedomain.ChargeStatus]decimal.Decimal `json:"sum_by_status"`
	// OutstandingTotal sums pending and overdue amounts net of partial
	// payments; CollectedTotal sums paid_amount over paid charges.
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
	CollectedTotal   decimal.Decimal `json:"collected_total"`
}

type Service interface {
	Stats(ctx context.Context, filter StatsFilter) (*Stats, error)
}
