package router

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/adapter/api/handler"
	"printmarket/internal/adapter/api/middleware"
	"printmarket/internal/domain/entity"
)

func SetupOrderRouter(e *echo.Echo, orderHandler *handler.OrderHandler, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	orders := e.Group("/v1/orders")
	orders.Use(authMiddleware.Authenticate)
	orders.Use(roleMiddleware.Resolve)

	orders.POST("", orderHandler.CreateOrder, roleMiddleware.Require(entity.RoleCustomer))
	orders.GET("", orderHandler.ListMyOrders, roleMiddleware.Require(entity.RoleCustomer))
	orders.GET("/:id", orderHandler.GetOrder)
	orders.GET("/:id/audit", orderHandler.GetAuditLog)
	orders.POST("/:id/cancel", orderHandler.CancelOrder, roleMiddleware.Require(entity.RoleCustomer, entity.RoleAdmin))
}
