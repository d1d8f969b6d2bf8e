package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = errors.New("template_not_found")
	ErrTemplateInactive = errors.New("template_inactive")
	// ErrConflict is returned when deleting a template that charges still
	// reference. Callers should deactivate instead.
	ErrConflict        = errors.New("template_conflict")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidDueDay   = errors.New("invalid_due_day")
)

type CreateRequest struct {
	Name          string
	Description   string
	Category      Category
	DefaultAmount decimal.Decimal
	DueDay        int
	Recurring     bool
}

// UpdateRequest carries patch semantics: nil fields are left unchanged.
type UpdateRequest struct {
	Name          *string
	Description   *string
	Category      *Category
	DefaultAmount *decimal.Decimal
	DueDay        *int
	Recurring     *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*FeeTemplate, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*FeeTemplate, error)
	Get(ctx context.Context, id snowflake.ID) (*FeeTemplate, error)
	List(ctx context.Context, onlyActive bool) ([]FeeTemplate, error)
	Deactivate(ctx context.Context, id snowflake.ID) (*FeeTemplate, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, t *FeeTemplate) error
	Update(ctx context.Context, db *gorm.DB, t *FeeTemplate) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FeeTemplate, error)
	List(ctx context.Context, db *gorm.DB, onlyActive bool) ([]FeeTemplate, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountCharges(ctx context.Context, db *gorm.DB, templateID snowflake.ID) (int64, error)
}
