// Package domain defines the batch generation contract: one fee template
// expanded into per-resident charges for one competency period.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrEmptyPopulation = errors.New("empty_population")
	ErrInvalidPeriod   = errors.New("invalid_competency_period")
)

// Skip reasons reported per resident instead of failing the whole batch.
const (
	SkipReasonAlreadyBilled    = "already_billed"
	SkipReasonResidentNotFound = "resident_not_found"
	SkipReasonResidentInactive = "resident_inactive"
	SkipReasonInsertFailed     = "insert_failed"
)

type GenerateRequest struct {
	TemplateID       snowflake.ID
	CompetencyPeriod string
	// DueDate overrides the template's due day applied to the period.
	DueDate *time.Time
	// ResidentIDs narrows the population; empty means all active residents.
	ResidentIDs []snowflake.ID
}

type SkippedResident struct {
	ResidentID snowflake.ID `json:"resident_id"`
	Reason     string       `json:"reason"`
}

type GenerateResult struct {
	Created []snowflake.ID    `json:"created"`
	Skipped []SkippedResident `json:"skipped"`
}

type Service interface {
	GenerateBatch(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}
