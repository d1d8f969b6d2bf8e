package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
)

type createFeeTemplateRequest struct {
	Name          string                     `json:"name"`
	Description   string                     `json:"description"`
	Category      feetemplatedomain.Category `json:"category"`
	DefaultAmount decimal.Decimal            `json:"default_amount"`
	DueDay        int                        `json:"due_day"`
	Recurring     bool                       `json:"recurring"`
}

type updateFeeTemplateRequest struct {
	Name          *string                     `json:"name"`
	Description   *string                     `json:"description"`
	Category      *feetemplatedomain.Category `json:"category"`
	DefaultAmount *decimal.Decimal            `json:"default_amount"`
	DueDay        *int                        `json:"due_day"`
	Recurring     *bool                       `json:"recurring"`
}

func (s *Server) CreateFeeTemplate(c *gin.Context) {
	var req createFeeTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.templateSvc.Create(c.Request.Context(), feetemplatedomain.CreateRequest{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Category:      req.Category,
		DefaultAmount: req.DefaultAmount,
		DueDay:        req.DueDay,
		Recurring:     req.Recurring,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, template)
}

func (s *Server) ListFeeTemplates(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	templates, err := s.templateSvc.List(c.Request.Context(), onlyActive)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, templates, nil)
}

func (s *Server) GetFeeTemplate(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.templateSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, template)
}

func (s *Server) UpdateFeeTemplate(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateFeeTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.templateSvc.Update(c.Request.Context(), id, feetemplatedomain.UpdateRequest{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		DefaultAmount: req.DefaultAmount,
		DueDay:        req.DueDay,
		Recurring:     req.Recurring,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, template)
}

func (s *Server) DeactivateFeeTemplate(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	template, err := s.templateSvc.Deactivate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, template)
}

func (s *Server) DeleteFeeTemplate(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.templateSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"deleted": true})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
