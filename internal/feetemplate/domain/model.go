// Package domain contains fee template definitions and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryOrdinary      Category = "ordinary"
	CategoryExtraordinary Category = "extraordinary"
	CategoryReserveFund   Category = "reserve_fund"
	CategoryWater         Category = "water"
	CategoryGas           Category = "gas"
	CategoryFine          Category = "fine"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryOrdinary, CategoryExtraordinary, CategoryReserveFund,
		CategoryWater, CategoryGas, CategoryFine:
		return true
	}
	return false
}

// FeeTemplate is a reusable fee definition ("taxa"). Deactivating it stops
// future batch generation without touching charges already generated from it.
type FeeTemplate struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"type:text;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Category      Category        `json:"category" gorm:"type:text;not null"`
	DefaultAmount decimal.Decimal `json:"default_amount" gorm:"type:numeric(12,2);not null"`
	DueDay        int             `json:"due_day" gorm:"not null"`
	Recurring     bool            `json:"recurring" gorm:"not null"`
	Active        bool            `json:"active" gorm:"not null;index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

func (FeeTemplate) TableName() string { return "fee_templates" }
