package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrResidentNotFound = errors.New("resident_not_found")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidUnit      = errors.New("invalid_unit")
)

type CreateRequest struct {
	Name  string
	Unit  string
	Block string
	Email string
}

// Directory is the read surface the billing engine depends on. Everything
// else about residents is registry plumbing.
type Directory interface {
	ListActive(ctx context.Context) ([]Resident, error)
	Get(ctx context.Context, id snowflake.ID) (*Resident, error)
}

type Service interface {
	Directory
	Create(ctx context.Context, req CreateRequest) (*Resident, error)
	List(ctx context.Context) ([]Resident, error)
	Deactivate(ctx context.Context, id snowflake.ID) (*Resident, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, r *Resident) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Resident, error)
	List(ctx context.Context, db *gorm.DB, status *ResidentStatus) ([]Resident, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status ResidentStatus) error
}
