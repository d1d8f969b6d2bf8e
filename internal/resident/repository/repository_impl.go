package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

type repo struct{}

func Provide() residentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, resident *residentdomain.Resident) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO residents (id, name, unit, block, email, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		resident.ID,
		resident.Name,
		resident.Unit,
		resident.Block,
		resident.Email,
		resident.Status,
		resident.CreatedAt,
		resident.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*residentdomain.Resident, error) {
	var resident residentdomain.Resident
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, unit, block, email, status, created_at, updated_at
		 FROM residents WHERE id = ?`,
		id,
	).Scan(&resident).Error
	if err != nil {
		return nil, err
	}
	if resident.ID == 0 {
		return nil, nil
	}
	return &resident, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status *residentdomain.ResidentStatus) ([]residentdomain.Resident, error) {
	query := db.WithContext(ctx).Model(&residentdomain.Resident{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var residents []residentdomain.Resident
	if err := query.Order("block ASC, unit ASC").Find(&residents).Error; err != nil {
		return nil, err
	}
	return residents, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status residentdomain.ResidentStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE residents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		id,
	).Error
}
