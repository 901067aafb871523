package router

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/adapter/api/handler"
	"printmarket/internal/adapter/api/middleware"
	"printmarket/internal/domain/entity"
)

func SetupDealerRouter(e *echo.Echo, dealerHandler *handler.DealerHandler, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	// Dealer directory for checkout, visible to any authenticated user.
	e.GET("/v1/dealers", dealerHandler.ListDealers, authMiddleware.Authenticate)

	dealer := e.Group("/v1/dealer")
	dealer.Use(authMiddleware.Authenticate)
	dealer.Use(roleMiddleware.Resolve)
	dealer.Use(roleMiddleware.Require(entity.RoleDealer))

	dealer.GET("/orders", dealerHandler.ListIncomingOrders)
	dealer.POST("/orders/:id/accept", dealerHandler.AcceptOrder)
	dealer.POST("/orders/:id/reject", dealerHandler.RejectOrder)
	dealer.PUT("/orders/:id/status", dealerHandler.UpdateOrderStatus)
	dealer.PUT("/orders/:id/eta", dealerHandler.UpdateOrderETA)
	dealer.GET("/dashboard", dealerHandler.GetDashboardStats)
	dealer.GET("/earnings", dealerHandler.GetEarnings)
}
