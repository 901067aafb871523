package handler

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/usecase"
	"printmarket/pkg/errors"
	"printmarket/pkg/response"
	"printmarket/pkg/utils"
)

type AdminHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewAdminHandler(orderUseCase *usecase.OrderUseCase) *AdminHandler {
	return &AdminHandler{
		orderUseCase: orderUseCase,
	}
}

func (h *AdminHandler) ListAllOrders(c echo.Context) error {
	status := c.QueryParam("status")
	pagination := utils.GetPaginationParams(c)

	orders, total, err := h.orderUseCase.ListAllOrders(
		c.Request().Context(), status, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

type reassignDealerRequest struct {
	DealerID string `json:"dealer_id" validate:"required"`
}

func (h *AdminHandler) ReassignDealer(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req reassignDealerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)

	order, err := h.orderUseCase.ReassignDealer(c.Request().Context(), adminID, orderID, req.DealerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

type overrideETARequest struct {
	ETA string `json:"eta" validate:"required"`
}

func (h *AdminHandler) OverrideETA(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req overrideETARequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)

	order, err := h.orderUseCase.OverrideETA(c.Request().Context(), adminID, orderID, req.ETA)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

type overridePricingRequest struct {
	Cost   float64 `json:"cost" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required"`
}

func (h *AdminHandler) OverridePricing(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req overridePricingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	adminID := c.Get("uid").(string)

	order, err := h.orderUseCase.OverridePricing(c.Request().Context(), adminID, orderID, req.Cost, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

type announceRequest struct {
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (h *AdminHandler) Announce(c echo.Context) error {
	var req announceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	notification, err := h.orderUseCase.Announce(c.Request().Context(), req.Title, req.Message)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, notification)
}
