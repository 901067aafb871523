package router

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/adapter/api/handler"
	"printmarket/internal/adapter/api/middleware"
	"printmarket/internal/domain/entity"
)

func SetupAdminRouter(e *echo.Echo, adminHandler *handler.AdminHandler, dealerHandler *handler.DealerHandler, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(roleMiddleware.Resolve)
	admin.Use(roleMiddleware.Require(entity.RoleAdmin))

	admin.GET("/orders", adminHandler.ListAllOrders)
	admin.PUT("/orders/:id/dealer", adminHandler.ReassignDealer)
	admin.PUT("/orders/:id/eta", adminHandler.OverrideETA)
	admin.PUT("/orders/:id/pricing", adminHandler.OverridePricing)
	// Admins use the same generic transition as dealers.
	admin.PUT("/orders/:id/status", dealerHandler.UpdateOrderStatus)
	admin.POST("/announcements", adminHandler.Announce)
}
