package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Default window of list endpoints.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// PageParams is the skip/limit window requested by a list call.
type PageParams struct {
	Skip  int
	Limit int
}

// parsePage reads skip and limit from the query string. Invalid or negative
// values fall back to the defaults.
func parsePage(c *gin.Context) PageParams {
	p := PageParams{Skip: DefaultSkip, Limit: DefaultLimit}
	if v, err := strconv.Atoi(c.Query("skip")); err == nil && v >= 0 {
		p.Skip = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v >= 0 {
		p.Limit = v
	}
	return p
}

// Paginate returns the window of items selected by p. The result is never nil.
func Paginate[T any](items []T, p PageParams) []T {
	if p.Skip >= len(items) {
		return []T{}
	}
	items = items[p.Skip:]
	if p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
