package rest

import (
	"context"
	"net/http"
	"strconv"

	"codMarket/domain"
	"codMarket/internal/middleware"
	"codMarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

type (
	ReturnsHandler struct {
		returnsService ReturnsService
	}

	ReturnsService interface {
		CreateReturn(ctx context.Context, in domain.CreateReturnInput) (domain.Return, error)
		TransitionReturn(ctx context.Context, id uint, in domain.TransitionReturnInput) (domain.Return, error)
		ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, error)
		GetReturn(ctx context.Context, id uint) (domain.Return, error)
	}

	// CreateReturnRequest is checked field by field in the service so every
	// problem is reported at once. Images are accepted and ignored.
	CreateReturnRequest struct {
		OrderID        uint     `json:"order_id"`
		ProductID      uint64   `json:"product_id"`
		CustomerPhone  string   `json:"customer_phone"`
		CustomerName   string   `json:"customer_name"`
		Reason         string   `json:"reason"`
		DetailedReason string   `json:"detailed_reason"`
		Images         []string `json:"images"`
	}

	TransitionReturnRequest struct {
		Status       string   `json:"status"`
		AdminNotes   *string  `json:"admin_notes"`
		RefundAmount *float64 `json:"refund_amount"`
	}
)

func NewReturnsHandler(returnsService ReturnsService) *ReturnsHandler {
	return &ReturnsHandler{
		returnsService: returnsService,
	}
}

func (h *ReturnsHandler) CreateReturn(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var request CreateReturnRequest
	if err := c.Bind(&request); err != nil {
		logger.Debug("Invalid request body", "error", err)
		return bindError()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	ret, err := h.returnsService.CreateReturn(ctx, domain.CreateReturnInput{
		OrderID:        request.OrderID,
		ProductID:      request.ProductID,
		CustomerPhone:  request.CustomerPhone,
		CustomerName:   request.CustomerName,
		Reason:         domain.ReturnReason(request.Reason),
		DetailedReason: request.DetailedReason,
		UserID:         &userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ret)
}

// ListReturns filters by status, phone and user_id. Customers only ever see
// their own returns.
func (h *ReturnsHandler) ListReturns(c echo.Context) error {
	filter := domain.ReturnFilter{
		Status: domain.ReturnStatus(c.QueryParam("status")),
		Phone:  c.QueryParam("phone"),
	}

	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return domain.NewValidationError("invalid user_id")
		}
		userID := uint(id)
		filter.UserID = &userID
	}

	if !middleware.IsAdmin(c) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			return domain.ErrUnauthorized
		}
		filter.UserID = &userID
	}

	returns, err := h.returnsService.ListReturns(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if returns == nil {
		returns = []domain.Return{}
	}

	return c.JSON(http.StatusOK, returns)
}

func (h *ReturnsHandler) GetReturn(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ret, err := h.returnsService.GetReturn(c.Request().Context(), id)
	if err != nil {
		return err
	}

	if !middleware.IsAdmin(c) {
		userID, _ := middleware.CurrentUserID(c)
		if ret.UserID == nil || *ret.UserID != userID {
			return domain.Forbidden("return does not belong to you")
		}
	}

	return c.JSON(http.StatusOK, ret)
}

func (h *ReturnsHandler) TransitionReturn(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request TransitionReturnRequest
	if err := c.Bind(&request); err != nil {
		return bindError()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	ret, err := h.returnsService.TransitionReturn(ctx, id, domain.TransitionReturnInput{
		Status:       domain.ReturnStatus(request.Status),
		AdminNotes:   request.AdminNotes,
		RefundAmount: request.RefundAmount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ret)
}
