package handler

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/service"
	"printmarket/pkg/errors"
	"printmarket/pkg/response"
)

type NotificationHandler struct {
	bus *service.NotificationBus
}

func NewNotificationHandler(bus *service.NotificationBus) *NotificationHandler {
	return &NotificationHandler{
		bus: bus,
	}
}

// address maps the actor to their notification address: dealers listen on
// "dealer_<uid>", everyone else on their uid. Admins asking for ?all=true
// see the whole list.
func address(c echo.Context) string {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	if role == entity.RoleAdmin && c.QueryParam("all") == "true" {
		return ""
	}
	if role == entity.RoleDealer {
		return entity.DealerTarget(uid)
	}
	return uid
}

// actorAddress scopes per-id mutations. Admins act on any notification,
// dealers on their dealer channel, everyone else on their uid.
func actorAddress(c echo.Context) string {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	switch role {
	case entity.RoleAdmin:
		return ""
	case entity.RoleDealer:
		return entity.DealerTarget(uid)
	default:
		return uid
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	return response.Success(c, h.bus.GetNotifications(address(c)))
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	return response.Success(c, map[string]int{"unread": h.bus.GetUnreadCount(address(c))})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.Error(c, errors.BadRequest("Notification ID is required", nil))
	}

	if err := h.bus.MarkAsRead(c.Request().Context(), id, actorAddress(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, nil)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.bus.MarkAllAsRead(c.Request().Context(), address(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, nil)
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.Error(c, errors.BadRequest("Notification ID is required", nil))
	}

	if err := h.bus.Delete(c.Request().Context(), id, actorAddress(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, nil)
}

func (h *NotificationHandler) Clear(c echo.Context) error {
	if err := h.bus.Clear(c.Request().Context(), address(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, nil)
}
