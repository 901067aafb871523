package handler

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/usecase"
	"printmarket/pkg/errors"
	"printmarket/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	senderID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), senderID, usecase.SendMessageInput{
		OrderID: orderID,
		Text:    req.Text,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	userID := c.Get("uid").(string)
	role := c.Get("role").(string)

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, role, orderID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) MarkMessagesAsRead(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkMessagesAsRead(c.Request().Context(), orderID, userID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, nil)
}

// AcknowledgeDelivery is called by a client when a message reaches it,
// advancing the message from sent to delivered.
func (h *ChatHandler) AcknowledgeDelivery(c echo.Context) error {
	orderID := c.Param("id")
	messageID := c.Param("messageId")
	if orderID == "" || messageID == "" {
		return response.Error(c, errors.BadRequest("Order ID and message ID are required", nil))
	}

	if err := h.chatUseCase.MarkDelivered(c.Request().Context(), orderID, messageID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, nil)
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	userID := c.Get("uid").(string)

	count, err := h.chatUseCase.GetUnreadCount(c.Request().Context(), orderID, userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"unread": count})
}
