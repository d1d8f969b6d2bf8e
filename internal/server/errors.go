package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	batchdomain "github.com/condovialabs/condovia/internal/batch/domain"
	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

var ErrInvalidRequest = errors.New("invalid_request")

func invalidRequestError() error { return ErrInvalidRequest }

// AbortWithError maps domain sentinels onto HTTP statuses. Anything unmapped
// is a 500 with an opaque body.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, ErrInvalidRequest):
		status, code = http.StatusBadRequest, err.Error()
	case errors.Is(err, feetemplatedomain.ErrTemplateNotFound),
		errors.Is(err, chargedomain.ErrChargeNotFound),
		errors.Is(err, residentdomain.ErrResidentNotFound):
		status, code = http.StatusNotFound, err.Error()
	case errors.Is(err, feetemplatedomain.ErrConflict),
		errors.Is(err, chargedomain.ErrTerminalState),
		errors.Is(err, chargedomain.ErrDuplicateCharge):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, feetemplatedomain.ErrTemplateInactive),
		errors.Is(err, feetemplatedomain.ErrInvalidName),
		errors.Is(err, feetemplatedomain.ErrInvalidCategory),
		errors.Is(err, feetemplatedomain.ErrInvalidAmount),
		errors.Is(err, feetemplatedomain.ErrInvalidDueDay),
		errors.Is(err, chargedomain.ErrInvalidAmount),
		errors.Is(err, chargedomain.ErrOverpayment),
		errors.Is(err, chargedomain.ErrInvalidDueDate),
		errors.Is(err, batchdomain.ErrEmptyPopulation),
		errors.Is(err, batchdomain.ErrInvalidPeriod),
		errors.Is(err, residentdomain.ErrInvalidName),
		errors.Is(err, residentdomain.ErrInvalidUnit):
		status, code = http.StatusUnprocessableEntity, err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code}})
}
