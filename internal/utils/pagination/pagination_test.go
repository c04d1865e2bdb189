package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFromRequest(t *testing.T) {
	tests := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, DefaultLimit, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=-5", 1, DefaultLimit, 0},
		{"?page=abc&limit=xyz", 1, DefaultLimit, 0},
		{"?page=2&limit=1000", 2, MaxLimit, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got Pagination
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = ParseFromRequest(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.offset, got.Offset)
		})
	}
}

func TestResponseMeta(t *testing.T) {
	p := Pagination{Page: 2, Limit: 10, Total: 21}
	meta := Response(p, []int{1})["meta"]
	assert.Equal(t, fiber.Map{
		"current_page": 2,
		"per_page":     10,
		"total_items":  int64(21),
		"total_pages":  int64(3),
	}, meta)

	assert.Equal(t, int64(0), Pagination{}.TotalPages())
}
