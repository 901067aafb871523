package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"printmarket/internal/usecase"
	"printmarket/pkg/errors"
	"printmarket/pkg/response"
	"printmarket/pkg/utils"
)

type DealerHandler struct {
	orderUseCase  *usecase.OrderUseCase
	dealerUseCase *usecase.DealerUseCase
}

func NewDealerHandler(orderUseCase *usecase.OrderUseCase, dealerUseCase *usecase.DealerUseCase) *DealerHandler {
	return &DealerHandler{
		orderUseCase:  orderUseCase,
		dealerUseCase: dealerUseCase,
	}
}

// ListDealers is the customer-facing dealer directory used at checkout.
func (h *DealerHandler) ListDealers(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	dealers, total, err := h.dealerUseCase.ListDealers(c.Request().Context(), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, dealers, total, pagination.Page, pagination.PageSize)
}

func (h *DealerHandler) ListIncomingOrders(c echo.Context) error {
	status := c.QueryParam("status")
	pagination := utils.GetPaginationParams(c)
	dealerID := c.Get("uid").(string)

	orders, total, err := h.orderUseCase.ListOrdersForDealer(
		c.Request().Context(), dealerID, status, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

func (h *DealerHandler) AcceptOrder(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	dealerID := c.Get("uid").(string)

	order, err := h.orderUseCase.AcceptOrder(c.Request().Context(), dealerID, orderID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *DealerHandler) RejectOrder(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req rejectOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	dealerID := c.Get("uid").(string)

	order, err := h.orderUseCase.RejectOrder(c.Request().Context(), dealerID, orderID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	StatusKey string `json:"status_key" validate:"required"`
}

func (h *DealerHandler) UpdateOrderStatus(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	actorID := c.Get("uid").(string)
	role := c.Get("role").(string)

	order, err := h.orderUseCase.UpdateOrderStatus(
		c.Request().Context(), actorID, role, orderID, req.Status, req.StatusKey)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

type updateETARequest struct {
	ETA string `json:"eta" validate:"required"`
}

func (h *DealerHandler) UpdateOrderETA(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	var req updateETARequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	dealerID := c.Get("uid").(string)

	order, err := h.orderUseCase.UpdateOrderETA(c.Request().Context(), dealerID, orderID, req.ETA)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *DealerHandler) GetDashboardStats(c echo.Context) error {
	dealerID := c.Get("uid").(string)

	stats, err := h.dealerUseCase.GetDashboardStats(c.Request().Context(), dealerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}

func (h *DealerHandler) GetEarnings(c echo.Context) error {
	dealerID := c.Get("uid").(string)

	from := time.Now().AddDate(0, -1, 0)
	to := time.Now()
	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.Error(c, errors.BadRequest("Invalid 'from' date", err))
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.Error(c, errors.BadRequest("Invalid 'to' date", err))
		}
		to = parsed
	}

	summary, err := h.dealerUseCase.GetEarnings(c.Request().Context(), dealerID, from, to)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}
