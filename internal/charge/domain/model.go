// Package domain contains the charge ledger: billing instances and the
// status state machine every mutation must respect.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	StatusPending   ChargeStatus = "pending"
	StatusPaid      ChargeStatus = "paid"
	StatusOverdue   ChargeStatus = "overdue"
	StatusCancelled ChargeStatus = "cancelled"
)

func (s ChargeStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// allowedTransitions is the closed edge set. paid and cancelled are terminal.
var allowedTransitions = map[ChargeStatus][]ChargeStatus{
	StatusPending: {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

func (s ChargeStatus) CanTransitionTo(next ChargeStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ChargeStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Charge is one billing obligation ("cobrança") for one resident. Unit and
// block are snapshots taken at creation time; residents may move later.
type Charge struct {
	ID               snowflake.ID    `json:"id" gorm:"primaryKey"`
	SourceTemplateID *snowflake.ID   `json:"source_template_id" gorm:"index"`
	ResidentID       snowflake.ID    `json:"resident_id" gorm:"not null;index"`
	Unit             string          `json:"unit" gorm:"type:text;not null"`
	Block            string          `json:"block" gorm:"type:text"`
	Description      string          `json:"description" gorm:"type:text;not null"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	DueDate          time.Time       `json:"due_date" gorm:"not null;index"`
	CompetencyPeriod *string         `json:"competency_period" gorm:"type:text;index"`
	Status           ChargeStatus    `json:"status" gorm:"type:text;not null;index"`
	PaidAmount       decimal.Decimal `json:"paid_amount" gorm:"type:numeric(12,2);not null"`
	PaidAt           *time.Time      `json:"paid_at"`
	ExternalPaymentRef *string       `json:"external_payment_ref" gorm:"type:text"`
	Notes            *string         `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null;index"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"not null"`
}

func (Charge) TableName() string { return "charges" }

// Outstanding is the unpaid remainder; zero for terminal charges.
func (c *Charge) Outstanding() decimal.Decimal {
	if c.Status.Terminal() {
		return decimal.Zero
	}
	return c.Amount.Sub(c.PaidAmount)
}
