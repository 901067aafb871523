package handler

import (
	"github.com/labstack/echo/v4"

	"printmarket/internal/usecase"
	"printmarket/pkg/errors"
	"printmarket/pkg/response"
	"printmarket/pkg/utils"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type orderDocumentRequest struct {
	FileName string            `json:"file_name" validate:"required"`
	Pages    int               `json:"pages" validate:"required,min=1"`
	Copies   int               `json:"copies" validate:"min=0"`
	Options  map[string]string `json:"options,omitempty"`
	Cost     float64           `json:"cost" validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerName  string                 `json:"customer_name" validate:"required"`
	DealerID      string                 `json:"dealer_id,omitempty"`
	ETA           string                 `json:"eta,omitempty"`
	PaymentMethod string                 `json:"payment_method" validate:"required,oneof=COD UPI Card"`
	PaymentStatus string                 `json:"payment_status,omitempty" validate:"omitempty,oneof=Pending Paid Failed"`
	Documents     []orderDocumentRequest `json:"documents" validate:"required,min=1,dive"`
}

// CreateOrder handles checkout. One document creates a single order; more
// create a batch of orders sharing a batch id.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	inputs := make([]usecase.CreateOrderInput, len(req.Documents))
	for i, doc := range req.Documents {
		inputs[i] = usecase.CreateOrderInput{
			CustomerName:  req.CustomerName,
			DealerID:      req.DealerID,
			FileName:      doc.FileName,
			Pages:         doc.Pages,
			Copies:        doc.Copies,
			Options:       doc.Options,
			Cost:          doc.Cost,
			ETA:           req.ETA,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: req.PaymentStatus,
		}
	}

	if len(inputs) == 1 {
		order, err := h.orderUseCase.CreateOrder(c.Request().Context(), userID, inputs[0])
		if err != nil {
			return response.Error(c, err)
		}
		return response.Created(c, order)
	}

	batch, orders, err := h.orderUseCase.CreateBatch(c.Request().Context(), userID, inputs)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, map[string]interface{}{
		"batch":  batch,
		"orders": orders,
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	userID := c.Get("uid").(string)
	role := c.Get("role").(string)

	order, err := h.orderUseCase.GetOrder(c.Request().Context(), userID, role, orderID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	status := c.QueryParam("status")
	pagination := utils.GetPaginationParams(c)
	userID := c.Get("uid").(string)

	orders, total, err := h.orderUseCase.ListOrdersForUser(
		c.Request().Context(), userID, status, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, orders, total, pagination.Page, pagination.PageSize)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	userID := c.Get("uid").(string)
	role := c.Get("role").(string)

	order, err := h.orderUseCase.CancelOrder(c.Request().Context(), userID, role, orderID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}

func (h *OrderHandler) GetAuditLog(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return response.Error(c, errors.BadRequest("Order ID is required", nil))
	}

	userID := c.Get("uid").(string)
	role := c.Get("role").(string)

	entries, err := h.orderUseCase.GetAuditLog(c.Request().Context(), userID, role, orderID)
	if err != nil {
		return response.Error(c, err)
	}

	if field := c.QueryParam("field"); field != "" {
		entries = usecase.FilterAuditByField(entries, field)
	}
	if byRole := c.QueryParam("role"); byRole != "" {
		entries = usecase.FilterAuditByRole(entries, byRole)
	}

	return response.Success(c, entries)
}
