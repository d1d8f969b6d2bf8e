// Package pagination implements cursor-based paging for list endpoints.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// Cursor identifies the last item of a page. Listing orders by
// (created_at desc, id desc), so both fields are needed to resume.
type Cursor struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

func EncodeCursor(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, err
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, err
	}
	return c, nil
}

// BuildCursorPageInfo inspects an over-fetched result set (pageSize+1 rows)
// and produces the next-page token from the last visible item.
func BuildCursorPageInfo[T any](items []T, pageSize int, cursorFor func(T) string) *PageInfo {
	info := &PageInfo{}
	if pageSize <= 0 || len(items) <= pageSize {
		return info
	}
	info.HasMore = true
	info.NextPageToken = cursorFor(items[pageSize-1])
	return info
}
