package rest

import (
	"context"
	"net/http"
	"strings"

	"codMarket/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	AdminCustomerHandler struct {
		validate     *validator.Validate
		adminService AdminService
	}

	AdminService interface {
		Execute(ctx context.Context, in domain.AdminActionInput) (domain.AdminActionResult, error)
		GetCustomer(ctx context.Context, phone string) (domain.CustomerScoreView, error)
	}

	AdminActionRequest struct {
		Action   string `json:"action" validate:"required,oneof=RESET_BLACKLIST CHANGE_PHONE ADJUST_SCORE SET_STATUS"`
		Phone    string `json:"phone"`
		UserID   uint   `json:"user_id"`
		NewPhone string `json:"new_phone"`
		Points   int    `json:"points"`
		Status   string `json:"status"`
		Reason   string `json:"reason" validate:"max=500"`
	}
)

func NewAdminCustomerHandler(adminService AdminService) *AdminCustomerHandler {
	return &AdminCustomerHandler{
		validate:     newValidator(),
		adminService: adminService,
	}
}

func (h *AdminCustomerHandler) ExecuteAction(c echo.Context) error {
	var request AdminActionRequest
	if err := c.Bind(&request); err != nil {
		return bindError()
	}

	request.Action = strings.ToUpper(strings.TrimSpace(request.Action))
	if err := h.validate.Struct(&request); err != nil {
		return validationError(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	result, err := h.adminService.Execute(ctx, domain.AdminActionInput{
		Action:   domain.AdminAction(request.Action),
		Phone:    request.Phone,
		UserID:   request.UserID,
		NewPhone: request.NewPhone,
		Points:   request.Points,
		Status:   domain.ScoreStatus(request.Status),
		Reason:   request.Reason,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminCustomerHandler) GetCustomer(c echo.Context) error {
	view, err := h.adminService.GetCustomer(c.Request().Context(), c.Param("phone"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}
