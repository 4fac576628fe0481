package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body io.Reader) StandardResponse {
	var out StandardResponse
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestFromError(t *testing.T) {
	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return FromError(c, errors.Wrap(apperror.NotFound("Category"), "update category"))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return FromError(c, fmt.Errorf("pq: connection refused"))
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return FromError(c, apperror.Validation(map[string]string{"name": "name is required"}))
	})

	t.Run("Success - Wrapped NotFound keeps status and message", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.False(t, body.Success)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "Category not found", body.Error.Message)
	})

	t.Run("Success - Unknown errors do not leak", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "pq")
	})

	t.Run("Success - Validation details are returned", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/invalid", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, map[string]interface{}{"name": "name is required"}, body.Error.Details)
	})
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := ParseID(c, "id")
		if err != nil {
			return FromError(c, err)
		}
		return Success(c, id, "")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/7", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/items/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
