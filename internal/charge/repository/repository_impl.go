package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/pkg/db/option"
	"github.com/condovialabs/condovia/pkg/db/pagination"
)

type repo struct{}

func Provide() chargedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *chargedomain.Charge) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO charges (
			id, source_template_id, resident_id, unit, block, description,
			amount, due_date, competency_period, status, paid_amount, paid_at,
			external_payment_ref, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.SourceTemplateID,
		c.ResidentID,
		c.Unit,
		c.Block,
		c.Description,
		c.Amount,
		c.DueDate,
		c.CompetencyPeriod,
		c.Status,
		c.PaidAmount,
		c.PaidAt,
		c.ExternalPaymentRef,
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*chargedomain.Charge, error) {
	var c chargedomain.Charge
	err := db.WithContext(ctx).
		Model(&chargedomain.Charge{}).
		Where("id = ?", id).
		Limit(1).
		Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*chargedomain.Charge, error) {
	query := db.WithContext(ctx).Model(&chargedomain.Charge{})
	// Sqlite has no row locks and serializes writers on its own.
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var c chargedomain.Charge
	err := query.
		Where("id = ?", id).
		Limit(1).
		Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *chargedomain.Charge) error {
	return db.WithContext(ctx).Exec(
		`UPDATE charges SET
			status = ?, paid_amount = ?, paid_at = ?, external_payment_ref = ?,
			notes = ?, updated_at = ?
		 WHERE id = ?`,
		c.Status,
		c.PaidAmount,
		c.PaidAt,
		c.ExternalPaymentRef,
		c.Notes,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter chargedomain.ListFilter, page pagination.Pagination) ([]chargedomain.Charge, error) {
	query := db.WithContext(ctx).Model(&chargedomain.Charge{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ResidentID != nil {
		query = query.Where("resident_id = ?", *filter.ResidentID)
	}
	if filter.CompetencyPeriod != nil {
		query = query.Where("competency_period = ?", *filter.CompetencyPeriod)
	}

	query = option.ApplyPagination(page).Apply(query)
	query = query.Order("created_at DESC, id DESC")

	var charges []chargedomain.Charge
	if err := query.Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *repo) ExistsNonCancelled(ctx context.Context, db *gorm.DB, templateID, residentID snowflake.ID, period string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM charges
		 WHERE source_template_id = ? AND resident_id = ? AND competency_period = ?
		   AND status <> ?`,
		templateID,
		residentID,
		period,
		chargedomain.StatusCancelled,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SweepOverdue only touches rows still pending, so a payment that lands first
// wins the race and the sweep becomes a no-op for that row.
func (r *repo) SweepOverdue(ctx context.Context, db *gorm.DB, asOf time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE charges SET status = ?, updated_at = ?
		 WHERE status = ? AND due_date < ?`,
		chargedomain.StatusOverdue,
		asOf,
		chargedomain.StatusPending,
		asOf,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
