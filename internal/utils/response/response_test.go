package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	domainerrors "purse/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureStatus(t *testing.T) {
	tests := []struct {
		kind   domainerrors.Kind
		status int
	}{
		{domainerrors.KindInvalidAmount, fiber.StatusUnprocessableEntity},
		{domainerrors.KindInsufficientFunds, fiber.StatusUnprocessableEntity},
		{domainerrors.KindSameAccount, fiber.StatusUnprocessableEntity},
		{domainerrors.KindValidationFailed, fiber.StatusUnprocessableEntity},
		{domainerrors.KindRecipientNotFound, fiber.StatusNotFound},
		{domainerrors.KindUnexpected, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return Failure(c, tt.kind, []string{"nope"})
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var env Envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.kind, env.ErrorKind)
			assert.Equal(t, []string{"nope"}, env.Errors)
		})
	}
}

func TestServerErrorHidesCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", ServerError)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, domainerrors.KindUnexpected, env.ErrorKind)
	assert.Equal(t, []string{"operation failed"}, env.Errors)
}
