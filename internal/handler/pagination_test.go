package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, Paginate(items, PageParams{Skip: 0, Limit: 100}))
	assert.Equal(t, []int{3, 4}, Paginate(items, PageParams{Skip: 2, Limit: 2}))
	assert.Equal(t, []int{}, Paginate(items, PageParams{Skip: 9, Limit: 2}))
	assert.Equal(t, []int{}, Paginate(items, PageParams{Skip: 0, Limit: 0}))
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PageParams
	}{
		{"", PageParams{Skip: DefaultSkip, Limit: DefaultLimit}},
		{"?skip=3&limit=7", PageParams{Skip: 3, Limit: 7}},
		{"?skip=-1&limit=abc", PageParams{Skip: DefaultSkip, Limit: DefaultLimit}},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/events"+tt.query, nil)
		assert.Equal(t, tt.want, parsePage(c), tt.query)
	}
}
