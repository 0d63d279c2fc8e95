package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page     int
	PageSize int
	Offset   int
}

// New clamps page/pageSize into the accepted range
func New(page, pageSize int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < MinPageSize {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Params{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// Parse extracts page/pageSize from query parameters. "limit" is accepted as an alias of pageSize.
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	size := c.Query("pageSize")
	if size == "" {
		size = c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize))
	}
	pageSize, _ := strconv.Atoi(size)

	return New(page, pageSize)
}
