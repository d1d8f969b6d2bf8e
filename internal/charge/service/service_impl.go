package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/internal/clock"
	"github.com/condovialabs/condovia/internal/observability"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
	"github.com/condovialabs/condovia/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Metrics   *observability.Metrics
	Repo      chargedomain.Repository
	Directory residentdomain.Directory
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	metrics   *observability.Metrics
	repo      chargedomain.Repository
	directory residentdomain.Directory
}

func New(p Params) chargedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("charge.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		metrics:   p.Metrics,
		repo:      p.Repo,
		directory: p.Directory,
	}
}

func (s *Service) CreateAdHoc(ctx context.Context, req chargedomain.CreateAdHocRequest) (*chargedomain.Charge, error) {
	if !req.Amount.IsPositive() {
		return nil, chargedomain.ErrInvalidAmount
	}
	if req.DueDate.IsZero() {
		return nil, chargedomain.ErrInvalidDueDate
	}

	resident, err := s.directory.Get(ctx, req.ResidentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	charge := &chargedomain.Charge{
		ID:          s.genID.Generate(),
		ResidentID:  resident.ID,
		Unit:        resident.Unit,
		Block:       resident.Block,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Status:      chargedomain.StatusPending,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, charge); err != nil {
		return nil, err
	}

	s.metrics.ChargesCreated.WithLabelValues("adhoc").Inc()
	return charge, nil
}

// RecordPayment applies a payment under a row lock so two concurrent payments
// on the same charge never lose an update. Excess over the charge amount is
// rejected, not clamped.
func (s *Service) RecordPayment(ctx context.Context, req chargedomain.RecordPaymentRequest) (*chargedomain.Charge, error) {
	if !req.Amount.IsPositive() {
		return nil, chargedomain.ErrInvalidAmount
	}

	var updated *chargedomain.Charge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charge, err := s.repo.FindByIDForUpdate(ctx, tx, req.ChargeID)
		if err != nil {
			return err
		}
		if charge == nil {
			return chargedomain.ErrChargeNotFound
		}
		if charge.Status.Terminal() {
			return chargedomain.ErrTerminalState
		}

		newPaid := charge.PaidAmount.Add(req.Amount)
		if newPaid.GreaterThan(charge.Amount) {
			return chargedomain.ErrOverpayment
		}

		charge.PaidAmount = newPaid
		if req.ExternalRef != nil && strings.TrimSpace(*req.ExternalRef) != "" {
			ref := strings.TrimSpace(*req.ExternalRef)
			charge.ExternalPaymentRef = &ref
		}

		if newPaid.GreaterThanOrEqual(charge.Amount) {
			if !charge.Status.CanTransitionTo(chargedomain.StatusPaid) {
				return chargedomain.ErrTerminalState
			}
			paidAt := req.PaidAt
			if paidAt.IsZero() {
				paidAt = s.clock.Now(ctx)
			}
			charge.Status = chargedomain.StatusPaid
			charge.PaidAt = &paidAt
		}

		charge.UpdatedAt = s.clock.Now(ctx)
		if err := s.repo.Update(ctx, tx, charge); err != nil {
			return err
		}
		updated = charge
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsRecorded.Inc()
	s.log.Info("payment recorded",
		zap.String("charge_id", updated.ID.String()),
		zap.String("paid_amount", updated.PaidAmount.String()),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// Cancel is the only non-paid terminal exit. Cancelling frees the uniqueness
// slot, so a later batch run may bill the resident again for the same period.
func (s *Service) Cancel(ctx context.Context, id snowflake.ID, reason string) (*chargedomain.Charge, error) {
	var updated *chargedomain.Charge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charge, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if charge == nil {
			return chargedomain.ErrChargeNotFound
		}
		if !charge.Status.CanTransitionTo(chargedomain.StatusCancelled) {
			return chargedomain.ErrTerminalState
		}

		charge.Status = chargedomain.StatusCancelled
		if reason = strings.TrimSpace(reason); reason != "" {
			note := "cancelled: " + reason
			if charge.Notes != nil && *charge.Notes != "" {
				note = *charge.Notes + "\n" + note
			}
			charge.Notes = &note
		}
		charge.UpdatedAt = s.clock.Now(ctx)
		if err := s.repo.Update(ctx, tx, charge); err != nil {
			return err
		}
		updated = charge
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ChargesCancelled.Inc()
	return updated, nil
}

// MarkOverdueSweep is idempotent: rows already overdue are not matched, so a
// second run with the same cutoff reports zero.
func (s *Service) MarkOverdueSweep(ctx context.Context, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now(ctx)
	}
	swept, err := s.repo.SweepOverdue(ctx, s.db, asOf)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.metrics.OverdueSwept.Add(float64(swept))
		s.log.Info("overdue sweep", zap.Int64("swept", swept), zap.Time("as_of", asOf))
	}
	return swept, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*chargedomain.Charge, error) {
	charge, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if charge == nil {
		return nil, chargedomain.ErrChargeNotFound
	}
	return charge, nil
}

func (s *Service) List(ctx context.Context, filter chargedomain.ListFilter, page pagination.Pagination) (*chargedomain.ListResponse, error) {
	charges, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, err
	}

	var pageInfo *pagination.PageInfo
	if page.PageSize > 0 {
		pageInfo = pagination.BuildCursorPageInfo(charges, page.PageSize, func(c chargedomain.Charge) string {
			token, err := pagination.EncodeCursor(pagination.Cursor{
				ID:        c.ID.String(),
				CreatedAt: c.CreatedAt.Format(time.RFC3339),
			})
			if err != nil {
				return ""
			}
			return token
		})
		if pageInfo.HasMore && len(charges) > page.PageSize {
			charges = charges[:page.PageSize]
		}
	}

	return &chargedomain.ListResponse{Charges: charges, PageInfo: pageInfo}, nil
}
