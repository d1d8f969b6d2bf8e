package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	chargerepo "github.com/condovialabs/condovia/internal/charge/repository"
	reportingdomain "github.com/condovialabs/condovia/internal/reporting/domain"
	reportingservice "github.com/condovialabs/condovia/internal/reporting/service"
)

type fixture struct {
	db    *gorm.DB
	svc   reportingdomain.Service
	genID *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&chargedomain.Charge{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := reportingservice.New(reportingservice.Params{
		DB:  db,
		Log: zap.NewNop(),
	})
	return &fixture{db: db, svc: svc, genID: node}
}

func (f *fixture) insertCharge(t *testing.T, period string, status chargedomain.ChargeStatus, amount, paid string) {
	t.Helper()

	now := time.Now().UTC()
	charge := &chargedomain.Charge{
		ID:               f.genID.Generate(),
		ResidentID:       f.genID.Generate(),
		Unit:             "101",
		Description:      "test charge",
		Amount:           decimal.RequireFromString(amount),
		PaidAmount:       decimal.RequireFromString(paid),
		DueDate:          time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		CompetencyPeriod: &period,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if status == chargedomain.StatusPaid {
		paidAt := now
		charge.PaidAt = &paidAt
	}
	require.NoError(t, chargerepo.Provide().Insert(context.Background(), f.db, charge))
}

func TestStatsMixedStatuses(t *testing.T) {
	f := newFixture(t)

	f.insertCharge(t, "2026-02", chargedomain.StatusPending, "350.00", "0")
	f.insertCharge(t, "2026-02", chargedomain.StatusPending, "350.00", "100.00")
	f.insertCharge(t, "2026-02", chargedomain.StatusPaid, "350.00", "350.00")
	f.insertCharge(t, "2026-02", chargedomain.StatusOverdue, "80.00", "0")
	f.insertCharge(t, "2026-02", chargedomain.StatusCancelled, "50.00", "0")

	stats, err := f.svc.Stats(context.Background(), reportingdomain.StatsFilter{})
	require.NoError(t, err)

	require.EqualValues(t, 2, stats.CountByStatus[chargedomain.StatusPending])
	require.EqualValues(t, 1, stats.CountByStatus[chargedomain.StatusPaid])
	require.EqualValues(t, 1, stats.CountByStatus[chargedomain.StatusOverdue])
	require.EqualValues(t, 1, stats.CountByStatus[chargedomain.StatusCancelled])

	// pending: (350-0)+(350-100), overdue: 80
	require.True(t, stats.OutstandingTotal.Equal(decimal.RequireFromString("680.00")),
		"outstanding = %s", stats.OutstandingTotal)
	// paid 350 plus the partial 100 still pending
	require.True(t, stats.CollectedTotal.Equal(decimal.RequireFromString("450.00")),
		"collected = %s", stats.CollectedTotal)

	require.True(t, stats.SumByStatus[chargedomain.StatusPending].Equal(decimal.RequireFromString("700.00")))
	require.True(t, stats.SumByStatus[chargedomain.StatusPaid].Equal(decimal.RequireFromString("350.00")))
}

func TestStatsFiltersByPeriod(t *testing.T) {
	f := newFixture(t)

	f.insertCharge(t, "2026-01", chargedomain.StatusPaid, "350.00", "350.00")
	f.insertCharge(t, "2026-02", chargedomain.StatusPending, "350.00", "0")

	period := "2026-02"
	stats, err := f.svc.Stats(context.Background(), reportingdomain.StatsFilter{CompetencyPeriod: &period})
	require.NoError(t, err)

	require.EqualValues(t, 1, stats.CountByStatus[chargedomain.StatusPending])
	require.Zero(t, stats.CountByStatus[chargedomain.StatusPaid])
	require.True(t, stats.OutstandingTotal.Equal(decimal.RequireFromString("350.00")))
	require.True(t, stats.CollectedTotal.IsZero())
}

func TestStatsEmptyLedger(t *testing.T) {
	f := newFixture(t)

	stats, err := f.svc.Stats(context.Background(), reportingdomain.StatsFilter{})
	require.NoError(t, err)
	require.Empty(t, stats.CountByStatus)
	require.True(t, stats.OutstandingTotal.IsZero())
	require.True(t, stats.CollectedTotal.IsZero())
}
