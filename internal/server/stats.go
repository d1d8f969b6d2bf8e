package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	reportingdomain "github.com/condovialabs/condovia/internal/reporting/domain"
)

func (s *Server) GetStats(c *gin.Context) {
	var filter reportingdomain.StatsFilter
	if period := strings.TrimSpace(c.Query("competency_period")); period != "" {
		filter.CompetencyPeriod = &period
	}

	stats, err := s.reportingSvc.Stats(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, stats)
}
