package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codMarket/domain"
	"codMarket/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoAmI(c echo.Context) error {
	userID, ok := CurrentUserID(c)
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "authenticated": ok, "admin": IsAdmin(c)})
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	e := echo.New()
	e.GET("/me", whoAmI, AuthMiddleware())
	e.GET("/admin", whoAmI, AuthMiddleware(), AdminOnly())

	rec := serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := utils.GenerateJWT("42", domain.RoleCustomer)
	require.NoError(t, err)

	rec = serve(e, http.MethodGet, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["user_id"])
	assert.Equal(t, false, body["admin"])

	rec = serve(e, http.MethodGet, "/admin", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := utils.GenerateJWT("1", domain.RoleAdmin)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/admin", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	e := echo.New()
	e.GET("/orders", whoAmI, OptionalAuth())

	rec := serve(e, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	token, err := utils.GenerateJWT("7", domain.RoleCustomer)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/orders", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)

	rec = serve(e, http.MethodGet, "/orders", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation list", domain.NewValidationError("a is required", "b is invalid"), http.StatusBadRequest, `"errors":["a is required","b is invalid"]`},
		{"policy", &domain.PolicyError{Status: domain.ScoreStatusBlacklisted}, http.StatusForbidden, `"status":"BLACKLISTED"`},
		{"duplicate return", &domain.ConflictError{Message: "dup", ExistingReturnID: 9, ExistingStatus: domain.ReturnStatusPending}, http.StatusConflict, `"existing_return_id":9`},
		{"not found", domain.NotFound("order"), http.StatusNotFound, `order not found`},
		{"forbidden", domain.Forbidden("order does not belong to you"), http.StatusForbidden, `does not belong`},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, `authentication required`},
		{"store failure", domain.StoreFailure("create order", errors.New("pq: secret driver detail")), http.StatusInternalServerError, `internal server error`},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad id"), http.StatusBadRequest, `bad id`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = ErrorHandler
			e.GET("/", func(c echo.Context) error { return tt.err })

			rec := serve(e, http.MethodGet, "/", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.NotContains(t, rec.Body.String(), "secret driver detail")
		})
	}
}

type countingLimiter struct {
	hits map[string]int
	max  int
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.hits[key]++
	return l.hits[key] <= l.max, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}, max: 2}

	e := echo.New()
	e.GET("/orders", whoAmI, RateLimit(limiter, "orders", 2, time.Minute))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/orders", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/orders", "").Code)

	for key := range limiter.hits {
		assert.Contains(t, key, "orders:ip:")
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: fmt.Errorf("redis down")}

	e := echo.New()
	e.GET("/orders", whoAmI, RateLimit(limiter, "orders", 1, time.Minute))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/orders", "").Code)
	}
}
