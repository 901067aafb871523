package router

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/adapter/api/handler"
	"printmarket/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
	orderHandler *handler.OrderHandler,
	dealerHandler *handler.DealerHandler,
	adminHandler *handler.AdminHandler,
	notificationHandler *handler.NotificationHandler,
	chatHandler *handler.ChatHandler,
	wsHandler *handler.WebSocketHandler,
) {
	SetupHealthRouter(e)
	SetupOrderRouter(e, orderHandler, authMiddleware, roleMiddleware)
	SetupDealerRouter(e, dealerHandler, authMiddleware, roleMiddleware)
	SetupAdminRouter(e, adminHandler, dealerHandler, authMiddleware, roleMiddleware)
	SetupNotificationRouter(e, notificationHandler, authMiddleware, roleMiddleware)
	SetupChatRouter(e, chatHandler, authMiddleware, roleMiddleware)
	SetupWebSocketRouter(e, wsHandler)
}
