package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerApp(t *testing.T, f *serviceFixture) *fiber.App {
	t.Helper()

	h := NewHandler(f.svc, 672*time.Hour)

	app := fiber.New()
	app.Post("/v1/login", h.Login)
	app.Post("/v1/refresh", h.Refresh)
	app.Post("/v1/logout", h.Logout)
	app.Post("/v1/registration", h.Register)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestHandler_Login(t *testing.T) {
	f := newServiceFixture(t, 5)
	app := newHandlerApp(t, f)

	resp := postJSON(t, app, "/v1/login", `{"email":"alice@example.com","password":"hunter2!"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie, "login sets the refresh cookie")
	assert.Equal(t, data["refresh_token"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestHandler_Login_Rejections(t *testing.T) {
	f := newServiceFixture(t, 5)
	app := newHandlerApp(t, f)

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/login", `{"email":"alice@example.com","password":"nope"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, ErrUnauthenticated.Error(), body["message"])
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/login", `{"email":"nobody@example.com","password":"hunter2!"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, ErrUnauthenticated.Error(), body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/login", `{"email":"alice@example.com"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unparseable body", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/login", `{not json`)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestHandler_Refresh(t *testing.T) {
	f := newServiceFixture(t, 5)
	app := newHandlerApp(t, f)

	pair, err := f.svc.Login("alice@example.com", "hunter2!")
	require.NoError(t, err)

	t.Run("token in body", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/refresh", `{"refresh_token":"`+pair.Refresh+`"}`)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		data := decodeBody(t, resp)["data"].(map[string]any)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEqual(t, pair.Refresh, data["refresh_token"])

		cookie := refreshCookie(resp)
		require.NotNil(t, cookie)
		assert.Equal(t, data["refresh_token"], cookie.Value)

		pair.Refresh = data["refresh_token"].(string)
	})

	t.Run("token in cookie", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: pair.Refresh})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/refresh", `{}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/refresh", `{"refresh_token":"garbage"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("revoked session", func(t *testing.T) {
		stale, err := f.svc.Login("alice@example.com", "hunter2!")
		require.NoError(t, err)
		require.NoError(t, f.svc.Logout(stale.Refresh))

		resp := postJSON(t, app, "/v1/refresh", `{"refresh_token":"`+stale.Refresh+`"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		// garbage tokens and revoked sessions answer identically
		body := decodeBody(t, resp)
		assert.Equal(t, "the authentication session has expired, please log in again", body["message"])
	})
}

func TestHandler_Logout(t *testing.T) {
	f := newServiceFixture(t, 5)
	app := newHandlerApp(t, f)

	pair, err := f.svc.Login("alice@example.com", "hunter2!")
	require.NoError(t, err)

	resp := postJSON(t, app, "/v1/logout", `{"refresh_token":"`+pair.Refresh+`"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value, "logout clears the refresh cookie")

	// logging out again, or with nothing at all, still answers 200
	resp = postJSON(t, app, "/v1/logout", `{"refresh_token":"`+pair.Refresh+`"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/v1/logout", `{}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/v1/logout", `{"refresh_token":"garbage"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandler_Register(t *testing.T) {
	f := newServiceFixture(t, 5)
	app := newHandlerApp(t, f)

	resp := postJSON(t, app, "/v1/registration", `{"id":"3f9c2c5e-8d3f-4a57-a2a9-0b1c8f9e7d21","password":"s3cret"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	t.Run("duplicate id", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/registration", `{"id":"3f9c2c5e-8d3f-4a57-a2a9-0b1c8f9e7d21","password":"other"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, ErrProfileExists.Error(), body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, app, "/v1/registration", `{"id":"some-id"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
