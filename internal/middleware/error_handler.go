package middleware

import (
	"errors"
	"net/http"

	"codMarket/domain"
	"codMarket/pkg/logger"

	jsonres "codMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler maps domain errors returned by handlers to HTTP responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("Failed to write error response", "error", err)
	}
}

func errorResponse(err error) (int, interface{}) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		policyErr     *domain.PolicyError
		httpErr       *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"errors": validationErr.Messages,
		}
	case errors.As(err, &policyErr):
		return http.StatusForbidden, echo.Map{
			"error":  policyErr.Error(),
			"status": policyErr.Status,
		}
	case errors.As(err, &conflictErr):
		body := echo.Map{"error": conflictErr.Message}
		if conflictErr.ExistingReturnID != 0 {
			body["existing_return_id"] = conflictErr.ExistingReturnID
			body["existing_status"] = conflictErr.ExistingStatus
		}
		return http.StatusConflict, body
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, jsonres.Error("BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", "authentication required", nil)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, jsonres.Error("FORBIDDEN", err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, jsonres.Error("NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, jsonres.Error("CONFLICT", err.Error(), nil)
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, jsonres.Error(http.StatusText(httpErr.Code), msg, nil)
	}

	// store failures and anything unexpected; never leak driver messages
	return http.StatusInternalServerError, jsonres.Error("INTERNAL_ERROR", "internal server error", nil)
}
