package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/pkg/db/pagination"
)

type createAdHocChargeRequest struct {
	ResidentID  string          `json:"resident_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Notes       *string         `json:"notes"`
}

type recordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"paid_at"`
	ExternalRef *string         `json:"external_ref"`
}

type cancelChargeRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CreateAdHocCharge(c *gin.Context) {
	var req createAdHocChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	residentID, err := parseID(req.ResidentID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.chargeSvc.CreateAdHoc(c.Request.Context(), chargedomain.CreateAdHocRequest{
		ResidentID:  residentID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, charge)
}

func (s *Server) ListCharges(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status           string `form:"status"`
		ResidentID       string `form:"resident_id"`
		CompetencyPeriod string `form:"competency_period"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var filter chargedomain.ListFilter
	if status := strings.TrimSpace(query.Status); status != "" {
		cs := chargedomain.ChargeStatus(status)
		if !cs.Valid() {
			AbortWithError(c, invalidRequestError())
			return
		}
		filter.Status = &cs
	}
	if raw := strings.TrimSpace(query.ResidentID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		filter.ResidentID = &id
	}
	if period := strings.TrimSpace(query.CompetencyPeriod); period != "" {
		filter.CompetencyPeriod = &period
	}

	resp, err := s.chargeSvc.List(c.Request.Context(), filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Charges, resp.PageInfo)
}

func (s *Server) GetCharge(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.chargeSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, charge)
}

func (s *Server) RecordPayment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.chargeSvc.RecordPayment(c.Request.Context(), chargedomain.RecordPaymentRequest{
		ChargeID:    id,
		Amount:      req.Amount,
		PaidAt:      req.PaidAt,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, charge)
}

func (s *Server) CancelCharge(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req cancelChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	charge, err := s.chargeSvc.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, charge)
}
