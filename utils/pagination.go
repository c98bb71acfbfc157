package utils

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxPageSize = 100

// Paginate applies ?page and ?limit when page is given; without it the whole
// list is returned, as the admin console expects.
func Paginate(c *fiber.Ctx) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.Query("page") == "" {
			return db
		}
		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 10)
		if limit < 1 || limit > maxPageSize {
			limit = 10
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
