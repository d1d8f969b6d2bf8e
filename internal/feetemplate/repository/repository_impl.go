package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
)

type repo struct{}

func Provide() feetemplatedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *feetemplatedomain.FeeTemplate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO fee_templates (
			id, name, description, category, default_amount, due_day,
			recurring, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		t.Description,
		t.Category,
		t.DefaultAmount,
		t.DueDay,
		t.Recurring,
		t.Active,
		t.CreatedAt,
		t.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, t *feetemplatedomain.FeeTemplate) error {
	return db.WithContext(ctx).Exec(
		`UPDATE fee_templates SET
			name = ?, description = ?, category = ?, default_amount = ?,
			due_day = ?, recurring = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name,
		t.Description,
		t.Category,
		t.DefaultAmount,
		t.DueDay,
		t.Recurring,
		t.Active,
		t.UpdatedAt,
		t.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*feetemplatedomain.FeeTemplate, error) {
	var t feetemplatedomain.FeeTemplate
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, category, default_amount, due_day,
		        recurring, active, created_at, updated_at
		 FROM fee_templates WHERE id = ?`,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, onlyActive bool) ([]feetemplatedomain.FeeTemplate, error) {
	query := db.WithContext(ctx).Model(&feetemplatedomain.FeeTemplate{})
	if onlyActive {
		query = query.Where("active = ?", true)
	}

	var templates []feetemplatedomain.FeeTemplate
	if err := query.Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM fee_templates WHERE id = ?`,
		id,
	).Error
}

func (r *repo) CountCharges(ctx context.Context, db *gorm.DB, templateID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM charges WHERE source_template_id = ?`,
		templateID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
