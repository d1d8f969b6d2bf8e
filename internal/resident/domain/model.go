// Package domain defines the resident directory consumed by billing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ResidentStatus string

const (
	ResidentStatusActive   ResidentStatus = "active"
	ResidentStatusInactive ResidentStatus = "inactive"
)

type Resident struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:text;not null"`
	Unit      string         `json:"unit" gorm:"type:text;not null"`
	Block     string         `json:"block" gorm:"type:text"`
	Email     string         `json:"email" gorm:"type:text"`
	Status    ResidentStatus `json:"status" gorm:"type:text;not null;index"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
}

func (Resident) TableName() string { return "residents" }
