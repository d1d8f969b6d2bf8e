// Package option carries composable gorm query modifiers.
package option

import (
	"time"

	"gorm.io/gorm"

	"github.com/condovialabs/condovia/pkg/db/pagination"
)

type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination turns a cursor token into a keyset predicate over
// (created_at, id) plus an over-fetch limit of pageSize+1.
func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(query *gorm.DB) *gorm.DB {
	if o.page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(o.page.PageToken)
		if err == nil {
			if at, perr := time.Parse(time.RFC3339, cursor.CreatedAt); perr == nil {
				query = query.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					at, at, cursor.ID,
				)
			}
		}
	}
	if o.page.PageSize > 0 {
		query = query.Limit(o.page.PageSize + 1)
	}
	return query
}
