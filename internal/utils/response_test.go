package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (int, map[string]any) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	return resp.StatusCode, body
}

func TestSuccessResponse(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return SuccessResponse(c, fiber.Map{"id": "42"}, "all good")
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "all good", body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42", data["id"])
}

func TestSuccessResponse_CustomStatus(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return SuccessResponse(c, nil, "created", fiber.StatusCreated)
	})

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["data"])
}

func TestErrorResponse(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return ErrorResponse(c, "nope", fiber.StatusUnauthorized)
	})

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "nope", body["message"])
	_, hasData := body["data"]
	assert.False(t, hasData, "error responses carry no data field")
}

func TestErrorResponse_DefaultStatus(t *testing.T) {
	status, _ := performRequest(t, func(c *fiber.Ctx) error {
		return ErrorResponse(c, "boom")
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
}
