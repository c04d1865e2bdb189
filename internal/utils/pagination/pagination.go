package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Pagination struct {
	Page   int
	Limit  int
	Offset int
	Total  int64
}

// ParseFromRequest reads ?page= and ?limit=. Missing or invalid values fall
// back to page 1 and DefaultLimit; limit is capped at MaxLimit.
func ParseFromRequest(c *fiber.Ctx) Pagination {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func (p Pagination) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	pages := p.Total / int64(p.Limit)
	if p.Total%int64(p.Limit) > 0 {
		pages++
	}
	return pages
}

// Response creates a standardized pagination response
func Response(p Pagination, data interface{}) fiber.Map {
	return fiber.Map{
		"items": data,
		"meta": fiber.Map{
			"current_page": p.Page,
			"per_page":     p.Limit,
			"total_items":  p.Total,
			"total_pages":  p.TotalPages(),
		},
	}
}
