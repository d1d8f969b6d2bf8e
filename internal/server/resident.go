package server

import (
	"github.com/gin-gonic/gin"

	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

type createResidentRequest struct {
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Block string `json:"block"`
	Email string `json:"email"`
}

func (s *Server) CreateResident(c *gin.Context) {
	var req createResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resident, err := s.residentSvc.Create(c.Request.Context(), residentdomain.CreateRequest{
		Name:  req.Name,
		Unit:  req.Unit,
		Block: req.Block,
		Email: req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resident)
}

func (s *Server) ListResidents(c *gin.Context) {
	if c.Query("status") == "active" {
		residents, err := s.residentSvc.ListActive(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		respondList(c, residents, nil)
		return
	}

	residents, err := s.residentSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, residents, nil)
}

func (s *Server) GetResident(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resident, err := s.residentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resident)
}

func (s *Server) DeactivateResident(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resident, err := s.residentSvc.Deactivate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resident)
}
