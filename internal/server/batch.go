package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	batchdomain "github.com/condovialabs/condovia/internal/batch/domain"
)

type generateBatchRequest struct {
	TemplateID       string     `json:"template_id"`
	CompetencyPeriod string     `json:"competency_period"`
	DueDate          *time.Time `json:"due_date"`
	ResidentIDs      []string   `json:"resident_ids"`
}

func (s *Server) GenerateBatch(c *gin.Context) {
	var req generateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	templateID, err := parseID(req.TemplateID)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	residentIDs := make([]snowflake.ID, 0, len(req.ResidentIDs))
	for _, raw := range req.ResidentIDs {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		residentIDs = append(residentIDs, id)
	}

	result, err := s.batchSvc.GenerateBatch(c.Request.Context(), batchdomain.GenerateRequest{
		TemplateID:       templateID,
		CompetencyPeriod: strings.TrimSpace(req.CompetencyPeriod),
		DueDate:          req.DueDate,
		ResidentIDs:      residentIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}
