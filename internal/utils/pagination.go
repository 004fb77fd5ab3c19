package utils

import (
	"strconv"

	"github.com/adithyakesavan/taskdeck/internal/constants"
	"github.com/gin-gonic/gin"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams extracts and validates pagination parameters from the
// request. When neither page nor limit is present the zero value is returned
// and list endpoints serve the full owner-scoped result set; the dashboard's
// derivation layer works over complete lists.
func GetPaginationParams(c *gin.Context) PaginationParams {
	if c.Query("page") == "" && c.Query("limit") == "" {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Enabled reports whether the params request an actual page window.
func (p PaginationParams) Enabled() bool {
	return p.Limit > 0
}
