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
	"github.com/condovialabs/condovia/internal/clock"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	feetemplaterepo "github.com/condovialabs/condovia/internal/feetemplate/repository"
	feetemplateservice "github.com/condovialabs/condovia/internal/feetemplate/service"
)

type fixture struct {
	db    *gorm.DB
	svc   feetemplatedomain.Service
	genID *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&feetemplatedomain.FeeTemplate{},
		&chargedomain.Charge{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := feetemplateservice.New(feetemplateservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.New(),
		Repo:  feetemplaterepo.Provide(),
	})

	return &fixture{db: db, svc: svc, genID: node}
}

func validCreateRequest() feetemplatedomain.CreateRequest {
	return feetemplatedomain.CreateRequest{
		Name:          "Taxa Ordinária",
		Description:   "Monthly maintenance fee",
		Category:      feetemplatedomain.CategoryOrdinary,
		DefaultAmount: decimal.RequireFromString("350.00"),
		DueDay:        10,
		Recurring:     true,
	}
}

func TestCreateTemplate(t *testing.T) {
	f := newFixture(t)

	template, err := f.svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.NotZero(t, template.ID)
	require.True(t, template.Active)

	fetched, err := f.svc.Get(context.Background(), template.ID)
	require.NoError(t, err)
	require.Equal(t, "Taxa Ordinária", fetched.Name)
	require.True(t, fetched.DefaultAmount.Equal(decimal.RequireFromString("350.00")))
}

func TestCreateTemplateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*feetemplatedomain.CreateRequest)
		wantErr error
	}{
		{
			name:    "blank name",
			mutate:  func(r *feetemplatedomain.CreateRequest) { r.Name = "   " },
			wantErr: feetemplatedomain.ErrInvalidName,
		},
		{
			name:    "unknown category",
			mutate:  func(r *feetemplatedomain.CreateRequest) { r.Category = "parking" },
			wantErr: feetemplatedomain.ErrInvalidCategory,
		},
		{
			name:    "zero amount",
			mutate:  func(r *feetemplatedomain.CreateRequest) { r.DefaultAmount = decimal.Zero },
			wantErr: feetemplatedomain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(r *feetemplatedomain.CreateRequest) { r.DefaultAmount = decimal.RequireFromString("-10") },
			wantErr: feetemplatedomain.ErrInvalidAmount,
		},
		{
			name:    "due day zero",
			mutate:  func(r *feetemplatedomain.CreateRequest) { r.DueDay = 0 },
			wantErr: feetemplatedomain.ErrInvalidDueDay,
		},
		{
			name:    "due day past cap",
			mutate:  func(r *feetemplatedomain.CreateRequest) { r.DueDay = 29 },
			wantErr: feetemplatedomain.ErrInvalidDueDay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := f.svc.Create(ctx, req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateTemplatePatchesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	template, err := f.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	amount := decimal.RequireFromString("380.00")
	updated, err := f.svc.Update(ctx, template.ID, feetemplatedomain.UpdateRequest{
		DefaultAmount: &amount,
	})
	require.NoError(t, err)
	require.True(t, updated.DefaultAmount.Equal(amount))
	require.Equal(t, template.Name, updated.Name)
	require.Equal(t, template.DueDay, updated.DueDay)
}

func TestUpdateTemplateRejectsBadDueDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	template, err := f.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	bad := 31
	_, err = f.svc.Update(ctx, template.ID, feetemplatedomain.UpdateRequest{DueDay: &bad})
	require.ErrorIs(t, err, feetemplatedomain.ErrInvalidDueDay)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	template, err := f.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	first, err := f.svc.Deactivate(ctx, template.ID)
	require.NoError(t, err)
	require.False(t, first.Active)

	second, err := f.svc.Deactivate(ctx, template.ID)
	require.NoError(t, err)
	require.False(t, second.Active)
}

func TestListOnlyActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active, err := f.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Name = "Taxa Antiga"
	retired, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.Deactivate(ctx, retired.ID)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyActive, err := f.svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	require.Equal(t, active.ID, onlyActive[0].ID)
}

func TestDeleteTemplateWithoutCharges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	template, err := f.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, template.ID))

	_, err = f.svc.Get(ctx, template.ID)
	require.ErrorIs(t, err, feetemplatedomain.ErrTemplateNotFound)
}

func TestDeleteTemplateWithChargesConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	template, err := f.svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	templateID := template.ID
	period := "2026-02"
	now := time.Now().UTC()
	charge := &chargedomain.Charge{
		ID:               f.genID.Generate(),
		SourceTemplateID: &templateID,
		ResidentID:       f.genID.Generate(),
		Unit:             "101",
		Description:      "Taxa Ordinária (2026-02)",
		Amount:           template.DefaultAmount,
		DueDate:          time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		CompetencyPeriod: &period,
		Status:           chargedomain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, chargerepo.Provide().Insert(ctx, f.db, charge))

	err = f.svc.Delete(ctx, template.ID)
	require.ErrorIs(t, err, feetemplatedomain.ErrConflict)

	_, err = f.svc.Get(ctx, template.ID)
	require.NoError(t, err)
}

func TestGetUnknownTemplate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), snowflake.ID(42))
	require.ErrorIs(t, err, feetemplatedomain.ErrTemplateNotFound)
}
