package rest

import (
	"context"
	"net/http"

	"codMarket/domain"
	"codMarket/internal/middleware"

	"github.com/labstack/echo/v4"
)

type (
	CustomerHandler struct {
		customerService CustomerService
	}

	CustomerService interface {
		GetMyScore(ctx context.Context, userID uint) (domain.CustomerScoreView, error)
	}
)

func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

func (h *CustomerHandler) GetScore(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	view, err := h.customerService.GetMyScore(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
