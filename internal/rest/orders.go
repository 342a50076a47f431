package rest

import (
	"context"
	"net/http"

	"codMarket/domain"
	"codMarket/internal/middleware"
	"codMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
	}

	OrdersService interface {
		PlaceOrder(ctx context.Context, in domain.PlaceOrderInput) (domain.Order, error)
		UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) (domain.Order, error)
		GetOrder(ctx context.Context, orderID uint) (domain.Order, error)
		ListOrders(ctx context.Context, userID *uint) ([]domain.Order, error)
	}

	CartItemRequest struct {
		ProductID uint64 `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"min=1"`
	}

	GuestInfoRequest struct {
		Name    string `json:"name" validate:"required"`
		Phone   string `json:"phone" validate:"required,dzphone"`
		Email   string `json:"email" validate:"omitempty,email"`
		Address string `json:"address" validate:"required"`
		Wilaya  string `json:"wilaya" validate:"required"`
		Commune string `json:"commune" validate:"required"`
	}

	PlaceOrderRequest struct {
		Items     []CartItemRequest `json:"items" validate:"required,min=1,dive"`
		GuestInfo GuestInfoRequest  `json:"guest_info"`
	}

	UpdateOrderStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}
)

func NewOrdersHandler(ordersService OrdersService) *OrdersHandler {
	return &OrdersHandler{
		validate:      newValidator(),
		ordersService: ordersService,
	}
}

func (h *OrdersHandler) PlaceOrder(c echo.Context) error {
	var request PlaceOrderRequest

	if err := c.Bind(&request); err != nil {
		logger.Debug("Invalid request body", "error", err)
		return bindError()
	}

	if err := h.validate.Struct(&request); err != nil {
		return validationError(err)
	}

	in := domain.PlaceOrderInput{
		Guest: domain.GuestInfo{
			Name:    request.GuestInfo.Name,
			Phone:   request.GuestInfo.Phone,
			Email:   request.GuestInfo.Email,
			Address: request.GuestInfo.Address,
			Wilaya:  request.GuestInfo.Wilaya,
			Commune: request.GuestInfo.Commune,
		},
	}
	for _, item := range request.Items {
		in.Items = append(in.Items, domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if userID, ok := middleware.CurrentUserID(c); ok {
		in.UserID = &userID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	order, err := h.ordersService.PlaceOrder(ctx, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"order_id": order.ID})
}

// GetAllOrders lists every order for admins and the caller's own otherwise.
func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	var userID *uint
	if !middleware.IsAdmin(c) {
		id, ok := middleware.CurrentUserID(c)
		if !ok {
			return domain.ErrUnauthorized
		}
		userID = &id
	}

	orders, err := h.ordersService.ListOrders(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *OrdersHandler) GetOrder(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.ordersService.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return err
	}

	if !middleware.IsAdmin(c) {
		userID, _ := middleware.CurrentUserID(c)
		if order.UserID == nil || *order.UserID != userID {
			return domain.Forbidden("order does not belong to you")
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request UpdateOrderStatusRequest
	if err := c.Bind(&request); err != nil {
		return bindError()
	}
	if err := h.validate.Struct(&request); err != nil {
		return validationError(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	order, err := h.ordersService.UpdateOrderStatus(ctx, orderID, domain.OrderStatus(request.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}
