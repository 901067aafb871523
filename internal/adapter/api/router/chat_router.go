package router

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/adapter/api/handler"
	"printmarket/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	chat := e.Group("/v1/orders/:id/messages")
	chat.Use(authMiddleware.Authenticate)
	chat.Use(roleMiddleware.Resolve)

	chat.POST("", chatHandler.SendMessage)
	chat.GET("", chatHandler.GetMessages)
	chat.PUT("/read", chatHandler.MarkMessagesAsRead)
	chat.GET("/unread-count", chatHandler.UnreadCount)
	chat.POST("/:messageId/ack", chatHandler.AcknowledgeDelivery)
}
