package database

import (
	"gorm.io/gorm"

	"github.com/adithyakesavan/taskdeck/internal/utils"
)

// Paginate applies pagination to a GORM query. A zero params value is a no-op
// and the query returns every row.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !params.Enabled() {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
