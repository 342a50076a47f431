package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"codMarket/pkg/logger"
	"codMarket/pkg/utils"

	jsonres "codMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware requires a valid bearer token and stores user_id and role in
// the echo context.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			if status, body := authenticate(c, authHeader); status != 0 {
				return c.JSON(status, body)
			}

			return next(c)
		}
	}
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous
// requests through. A malformed or invalid token is still rejected.
func OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			if status, body := authenticate(c, authHeader); status != 0 {
				return c.JSON(status, body)
			}

			return next(c)
		}
	}
}

func authenticate(c echo.Context, authHeader string) (int, jsonres.ErrorBody) {
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "Invalid authorization format", nil)
	}

	tokenString := tokenParts[1]

	claims, err := utils.ParseJWT(tokenString)
	if err != nil {
		logger.Debug("Rejected token", "error", err)
		return http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "Invalid token", nil)
	}

	expAt, err := claims.GetExpirationTime()
	if err != nil || expAt == nil || time.Now().After(expAt.Time) {
		return http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "Token expired", nil)
	}

	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		logger.Error("Invalid user ID in token", "error", err)
		return http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "Invalid user ID in token", nil)
	}

	c.Set("user_id", uint(userID))
	c.Set("role", claims.Role)

	return 0, jsonres.ErrorBody{}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAdmin(c) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

// IsAdmin reports whether the authenticated caller has the admin role.
func IsAdmin(c echo.Context) bool {
	role, ok := c.Get("role").(string)
	return ok && strings.EqualFold(role, "admin")
}

// CurrentUserID returns the authenticated caller, if any.
func CurrentUserID(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}
