package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/condovialabs/condovia/pkg/db/pagination"
)

var (
	ErrChargeNotFound = errors.New("charge_not_found")
	// ErrTerminalState guards paid and cancelled charges against any further
	// mutation.
	ErrTerminalState = errors.New("charge_terminal_state")
	ErrInvalidAmount = errors.New("invalid_amount")
	// ErrOverpayment rejects payments that would push paid_amount past the
	// charge amount. Credits are handled elsewhere, never by truncation here.
	ErrOverpayment    = errors.New("overpayment_rejected")
	ErrInvalidDueDate = errors.New("invalid_due_date")
	// ErrDuplicateCharge reports a lost insert race on the uniqueness index
	// over (source_template_id, resident_id, competency_period).
	ErrDuplicateCharge = errors.New("duplicate_charge")
)

type CreateAdHocRequest struct {
	ResidentID  snowflake.ID
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
	Notes       *string
}

type RecordPaymentRequest struct {
	ChargeID    snowflake.ID
	Amount      decimal.Decimal
	PaidAt      time.Time
	ExternalRef *string
}

type ListFilter struct {
	Status           *ChargeStatus
	ResidentID       *snowflake.ID
	CompetencyPeriod *string
}

type ListResponse struct {
	Charges  []Charge
	PageInfo *pagination.PageInfo
}

// Service is the status lifecycle manager: the only writer allowed to move a
// charge between states.
type Service interface {
	CreateAdHoc(ctx context.Context, req CreateAdHocRequest) (*Charge, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Charge, error)
	Cancel(ctx context.Context, id snowflake.ID, reason string) (*Charge, error)
	MarkOverdueSweep(ctx context.Context, asOf time.Time) (int64, error)
	Get(ctx context.Context, id snowflake.ID) (*Charge, error)
	List(ctx context.Context, filter ListFilter, page pagination.Pagination) (*ListResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, c *Charge) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Charge, error)
	// FindByIDForUpdate locks the row for the enclosing transaction so
	// concurrent payments on the same charge serialize.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Charge, error)
	Update(ctx context.Context, db *gorm.DB, c *Charge) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Charge, error)
	// ExistsNonCancelled reports whether a live charge already occupies the
	// (template, resident, period) slot.
	ExistsNonCancelled(ctx context.Context, db *gorm.DB, templateID, residentID snowflake.ID, period string) (bool, error)
	// SweepOverdue flips pending charges past due to overdue in one
	// conditional update and returns the number of rows affected.
	SweepOverdue(ctx context.Context, db *gorm.DB, asOf time.Time) (int64, error)
}
