package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/condovialabs/condovia/pkg/db/pagination"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type listEnvelope struct {
	Data     any                  `json:"data"`
	PageInfo *pagination.PageInfo `json:"page_info,omitempty"`
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dataEnvelope{Data: data})
}

func respondList(c *gin.Context, data any, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, listEnvelope{Data: data, PageInfo: pageInfo})
}
