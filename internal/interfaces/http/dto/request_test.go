package dto

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"defaults", PageRequest{}, 1, 20},
		{"negative page", PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid unchanged", PageRequest{Page: 3, PageSize: 50}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.wantPage, tt.in.Page)
			assert.Equal(t, tt.wantPageSize, tt.in.PageSize)
		})
	}
}

func TestPageRequest_OffsetLimit(t *testing.T) {
	r := PageRequest{Page: 3, PageSize: 25}
	assert.Equal(t, 50, r.Offset())
	assert.Equal(t, 25, r.Limit())
}

func TestBindPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/papers?page=4&page_size=30", nil)

	req := BindPage(c)
	assert.Equal(t, 4, req.Page)
	assert.Equal(t, 30, req.PageSize)
}

func TestBindPage_BadValuesFallBack(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/papers?page=abc&page_size=-5", nil)

	req := BindPage(c)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
}
