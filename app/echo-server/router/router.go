package router

import (
	"net/http"

	"codMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, optionalAuth, authRequired, adminOnly, rateLimit echo.MiddlewareFunc) {
	orders := api.Group("/orders")

	orders.POST("", handler.PlaceOrder, optionalAuth, rateLimit)
	orders.GET("", handler.GetAllOrders, authRequired)
	orders.GET("/:id", handler.GetOrder, authRequired)
	orders.PATCH("/:id/status", handler.UpdateOrderStatus, authRequired, adminOnly)
}

func SetReturnsRoutes(api *echo.Group, handler *rest.ReturnsHandler, authRequired, adminOnly, rateLimit echo.MiddlewareFunc) {
	returns := api.Group("/returns", authRequired)

	returns.POST("", handler.CreateReturn, rateLimit)
	returns.GET("", handler.ListReturns)
	returns.GET("/:id", handler.GetReturn)
	returns.PATCH("/:id", handler.TransitionReturn, adminOnly)
}

func SetCustomerRoutes(api *echo.Group, handler *rest.CustomerHandler, authRequired echo.MiddlewareFunc) {
	api.GET("/customer/score", handler.GetScore, authRequired)
}

func SetAdminCustomerRoutes(api *echo.Group, handler *rest.AdminCustomerHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/customers", authRequired, adminOnly)

	admin.POST("/actions", handler.ExecuteAction)
	admin.GET("/:phone", handler.GetCustomer)
}

// SetOpsRoutes mounts health and metrics outside the versioned API.
func SetOpsRoutes(e *echo.Echo, metricsHandler http.Handler, healthy func() error) {
	e.GET("/metrics", echo.WrapHandler(metricsHandler))
	e.GET("/healthz", func(c echo.Context) error {
		if err := healthy(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}
