package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/internal/domain/service"
	"printmarket/pkg/errors"
	"printmarket/pkg/logger"
)

// Fields tracked by the audit log. All are primitives; the diff uses plain
// equality on the snapshot values.
var auditedFields = []string{
	"status",
	"statusKey",
	"eta",
	"cost",
	"price",
	"paymentStatus",
	"dealerId",
	"dealerName",
	"etaOverridden",
	"pricingOverridden",
	"pricingOverrideReason",
	"rejectionReason",
}

type OrderUseCase struct {
	orderRepo  repository.OrderRepository
	dealerRepo repository.DealerRepository
	userRepo   repository.UserRepository
	batchRepo  repository.BatchRepository
	bus        *service.NotificationBus
	locks      *keyedMutex
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	dealerRepo repository.DealerRepository,
	userRepo repository.UserRepository,
	batchRepo repository.BatchRepository,
	bus *service.NotificationBus,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:  orderRepo,
		dealerRepo: dealerRepo,
		userRepo:   userRepo,
		batchRepo:  batchRepo,
		bus:        bus,
		locks:      newKeyedMutex(),
	}
}

type CreateOrderInput struct {
	CustomerName  string
	DealerID      string
	FileName      string
	Pages         int
	Copies        int
	Options       map[string]string
	Cost          float64
	ETA           string
	PaymentMethod string
	PaymentStatus string
}

func (uc *OrderUseCase) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*entity.Order, error) {
	order, err := uc.buildOrder(ctx, userID, input, "", 0)
	if err != nil {
		return nil, err
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	uc.publishCheckoutNotifications(ctx, order)

	return order, nil
}

// CreateBatch creates one order per document sharing a batch id, plus the
// batch record grouping them.
func (uc *OrderUseCase) CreateBatch(ctx context.Context, userID string, inputs []CreateOrderInput) (*entity.Batch, []*entity.Order, error) {
	if len(inputs) == 0 {
		return nil, nil, errors.BadRequest("At least one document is required", nil)
	}

	batch := &entity.Batch{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	orders := make([]*entity.Order, 0, len(inputs))
	for i, input := range inputs {
		order, err := uc.buildOrder(ctx, userID, input, batch.ID, i)
		if err != nil {
			return nil, nil, err
		}
		if err := uc.orderRepo.Create(ctx, order); err != nil {
			return nil, nil, err
		}
		batch.OrderIDs = append(batch.OrderIDs, order.ID)
		orders = append(orders, order)
	}

	if err := uc.batchRepo.Create(ctx, batch); err != nil {
		return nil, nil, err
	}

	for _, order := range orders {
		uc.publishCheckoutNotifications(ctx, order)
	}

	return batch, orders, nil
}

func (uc *OrderUseCase) buildOrder(ctx context.Context, userID string, input CreateOrderInput, batchID string, batchIndex int) (*entity.Order, error) {
	if input.FileName == "" {
		return nil, errors.BadRequest("Document file name is required", nil)
	}
	if input.Cost <= 0 {
		return nil, errors.BadRequest("Order cost must be positive", nil)
	}

	var dealerName string
	if input.DealerID != "" {
		dealer, err := uc.dealerRepo.GetByID(ctx, input.DealerID)
		if err != nil {
			return nil, err
		}
		dealerName = dealer.Name
	}

	now := time.Now()
	copies := input.Copies
	if copies <= 0 {
		copies = 1
	}
	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = "Pending"
	}

	order := &entity.Order{
		ID:            generateOrderID(),
		UserID:        userID,
		CustomerName:  input.CustomerName,
		DealerID:      input.DealerID,
		DealerName:    dealerName,
		FileName:      input.FileName,
		Pages:         input.Pages,
		Copies:        copies,
		Options:       input.Options,
		Status:        entity.StatusPending.Label(),
		StatusKey:     entity.StatusPending,
		ETA:           input.ETA,
		Cost:          input.Cost,
		Price:         formatPrice(input.Cost),
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: paymentStatus,
		BatchID:       batchID,
		BatchIndex:    batchIndex,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if paymentStatus == "Paid" {
		order.PaymentDate = &now
	}

	appendHistory(order, entity.StatusPending, now)
	appendChangeLog(order, entity.RoleCustomer, "created", "")

	return order, nil
}

func (uc *OrderUseCase) publishCheckoutNotifications(ctx context.Context, order *entity.Order) {
	if order.DealerID != "" {
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationOrderAssigned,
			Title:   "New Order",
			Message: fmt.Sprintf("New print order %s (%s, %d copies)", order.ID, order.FileName, order.Copies),
			UserID:  entity.DealerTarget(order.DealerID),
			OrderID: order.ID,
		})
	}

	switch order.PaymentStatus {
	case "Paid":
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationPaymentSuccess,
			Title:   "Payment Successful",
			Message: fmt.Sprintf("Payment of %s for order %s was successful", order.Price, order.ID),
			UserID:  order.UserID,
			OrderID: order.ID,
		})
	case "Failed":
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationPaymentFailed,
			Title:   "Payment Failed",
			Message: fmt.Sprintf("Payment for order %s failed. Please try again.", order.ID),
			UserID:  order.UserID,
			OrderID: order.ID,
		})
	}
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, actorID, role, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if role != entity.RoleAdmin && order.UserID != actorID && order.DealerID != actorID {
		return nil, errors.Forbidden("You don't have permission to view this order", nil)
	}

	return order, nil
}

func (uc *OrderUseCase) ListOrdersForUser(ctx context.Context, userID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	return uc.orderRepo.ListByUserID(ctx, userID, status, limit, offset)
}

func (uc *OrderUseCase) ListOrdersForDealer(ctx context.Context, dealerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	return uc.orderRepo.ListByDealerID(ctx, dealerID, status, limit, offset)
}

func (uc *OrderUseCase) ListAllOrders(ctx context.Context, status string, limit, offset int) ([]*entity.Order, int64, error) {
	filter := map[string]interface{}{}
	if status != "" {
		filter["statusKey"] = string(entity.NormalizeStatusKey(status))
	}
	return uc.orderRepo.List(ctx, filter, limit, offset)
}

// AcceptOrder moves a pending order to dealer-accepted. Re-accepting an
// already accepted order is an explicit error, not a silent no-op.
func (uc *OrderUseCase) AcceptOrder(ctx context.Context, dealerID, orderID string) (*entity.Order, error) {
	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.DealerID != "" && order.DealerID != dealerID {
		return nil, errors.Forbidden("Order is assigned to another dealer", nil)
	}
	if order.StatusKey != entity.StatusPending {
		return nil, errors.InvalidTransition(fmt.Sprintf("Order cannot be accepted from status %q", order.StatusKey))
	}

	prev := snapshot(order)
	now := time.Now()

	if order.DealerID == "" {
		dealer, err := uc.dealerRepo.GetByID(ctx, dealerID)
		if err != nil {
			return nil, err
		}
		order.DealerID = dealer.ID
		order.DealerName = dealer.Name
	}

	setStatus(order, entity.StatusDealerAccepted, "")
	order.AcceptedAt = &now
	appendHistory(order, entity.StatusDealerAccepted, now)
	appendChangeLog(order, entity.RoleDealer, "accepted", prev["status"].(string))
	appendAudit(order, entity.RoleDealer, dealerID, buildChanges(prev, snapshot(order)), "")

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderAccepted,
		Title:   "Order Accepted",
		Message: fmt.Sprintf("Your order %s has been accepted by %s", order.ID, order.DealerName),
		UserID:  order.UserID,
		OrderID: order.ID,
	})

	return order, nil
}

// RejectOrder moves a pending order to rejected. The reason is mandatory.
func (uc *OrderUseCase) RejectOrder(ctx context.Context, dealerID, orderID, reason string) (*entity.Order, error) {
	if reason == "" {
		return nil, errors.BadRequest("Rejection reason is required", nil)
	}

	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.DealerID != "" && order.DealerID != dealerID {
		return nil, errors.Forbidden("Order is assigned to another dealer", nil)
	}
	if order.StatusKey != entity.StatusPending {
		return nil, errors.InvalidTransition(fmt.Sprintf("Order cannot be rejected from status %q", order.StatusKey))
	}

	prev := snapshot(order)
	now := time.Now()

	setStatus(order, entity.StatusRejected, "")
	order.RejectedAt = &now
	order.RejectionReason = reason
	appendHistory(order, entity.StatusRejected, now)
	appendChangeLog(order, entity.RoleDealer, "rejected", prev["status"].(string))
	appendAudit(order, entity.RoleDealer, dealerID, buildChanges(prev, snapshot(order)), reason)

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderRejected,
		Title:   "Order Rejected",
		Message: fmt.Sprintf("Your order %s was rejected: %s", order.ID, reason),
		UserID:  order.UserID,
		OrderID: order.ID,
	})

	return order, nil
}

// UpdateOrderStatus is the generic forward transition used by dealers and
// admins. Reaching delivered on a cash-on-delivery order with payment still
// pending settles the payment.
func (uc *OrderUseCase) UpdateOrderStatus(ctx context.Context, actorID, role, orderID, status, statusKey string) (*entity.Order, error) {
	if role != entity.RoleDealer && role != entity.RoleAdmin {
		return nil, errors.Forbidden("Only dealers or admins can update order status", nil)
	}
	key := entity.NormalizeStatusKey(statusKey)
	if !entity.IsValidStatusKey(statusKey) {
		return nil, errors.BadRequest(fmt.Sprintf("Unknown status key %q", statusKey), nil)
	}

	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if role == entity.RoleDealer && order.DealerID != actorID {
		return nil, errors.Forbidden("Order is assigned to another dealer", nil)
	}
	if !order.StatusKey.CanTransitionTo(key) {
		return nil, errors.InvalidTransition(fmt.Sprintf("Cannot move order from %q to %q", order.StatusKey, key))
	}

	prev := snapshot(order)
	now := time.Now()

	setStatus(order, key, status)
	stampStatusTimestamp(order, key, now)

	settled := false
	if key == entity.StatusDelivered && order.PaymentMethod == "COD" && order.PaymentStatus == "Pending" {
		order.PaymentStatus = "Paid"
		order.PaymentDate = &now
		settled = true
	}

	appendHistory(order, key, now)
	appendChangeLog(order, role, "status_updated", prev["status"].(string))
	appendAudit(order, role, actorID, buildChanges(prev, snapshot(order)), "")

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderStatusUpdate,
		Title:   "Order Update",
		Message: statusMessage(order.ID, key),
		UserID:  order.UserID,
		OrderID: order.ID,
	})

	if settled {
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationPaymentSuccess,
			Title:   "Payment Received",
			Message: fmt.Sprintf("Cash payment of %s received for order %s", order.Price, order.ID),
			UserID:  order.UserID,
			OrderID: order.ID,
		})
	}

	return order, nil
}

// UpdateOrderETA replaces the dealer's time estimate.
func (uc *OrderUseCase) UpdateOrderETA(ctx context.Context, dealerID, orderID, newETA string) (*entity.Order, error) {
	if newETA == "" {
		return nil, errors.BadRequest("ETA is required", nil)
	}

	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.DealerID != dealerID {
		return nil, errors.Forbidden("Order is assigned to another dealer", nil)
	}
	if order.StatusKey.IsTerminal() {
		return nil, errors.InvalidTransition("Cannot update ETA of a closed order")
	}

	prev := snapshot(order)
	order.ETA = newETA
	order.UpdatedAt = time.Now()
	appendChangeLog(order, entity.RoleDealer, "eta_updated", prev["status"].(string))
	appendAudit(order, entity.RoleDealer, dealerID, buildChanges(prev, snapshot(order)), "")

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationETAUpdated,
		Title:   "ETA Updated",
		Message: fmt.Sprintf("Estimated time for order %s is now %s", order.ID, newETA),
		UserID:  order.UserID,
		OrderID: order.ID,
	})

	return order, nil
}

// CancelOrder is a terminal transition. Admins may cancel any non-terminal
// order; customers only their own order while it is still pending.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, actorID, role, orderID string) (*entity.Order, error) {
	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch role {
	case entity.RoleAdmin:
	case entity.RoleCustomer:
		if order.UserID != actorID {
			return nil, errors.Forbidden("You don't have permission to cancel this order", nil)
		}
		if order.StatusKey != entity.StatusPending {
			return nil, errors.InvalidTransition("Orders can only be cancelled while pending")
		}
	default:
		return nil, errors.Forbidden("Only admins or the customer can cancel an order", nil)
	}

	if order.StatusKey.IsTerminal() {
		return nil, errors.InvalidTransition(fmt.Sprintf("Order is already %q", order.StatusKey))
	}

	prev := snapshot(order)
	now := time.Now()

	setStatus(order, entity.StatusCancelled, "")
	order.CancelledAt = &now
	appendHistory(order, entity.StatusCancelled, now)
	appendChangeLog(order, role, "cancelled", prev["status"].(string))
	appendAudit(order, role, actorID, buildChanges(prev, snapshot(order)), "")

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderStatusUpdate,
		Title:   "Order Cancelled",
		Message: fmt.Sprintf("Order %s has been cancelled", order.ID),
		UserID:  order.UserID,
		OrderID: order.ID,
	})
	if order.DealerID != "" && role != entity.RoleDealer {
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationOrderStatusUpdate,
			Title:   "Order Cancelled",
			Message: fmt.Sprintf("Order %s has been cancelled", order.ID),
			UserID:  entity.DealerTarget(order.DealerID),
			OrderID: order.ID,
		})
	}

	return order, nil
}

// GetAuditLog returns the order's field-level change ledger.
func (uc *OrderUseCase) GetAuditLog(ctx context.Context, actorID, role, orderID string) ([]entity.AuditEntry, error) {
	order, err := uc.GetOrder(ctx, actorID, role, orderID)
	if err != nil {
		return nil, err
	}
	return order.AuditLog, nil
}

// FilterAuditByField narrows entries to those touching the given field.
func FilterAuditByField(entries []entity.AuditEntry, field string) []entity.AuditEntry {
	var filtered []entity.AuditEntry
	for _, e := range entries {
		if _, ok := e.Changes[field]; ok {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FilterAuditByRole narrows entries to those performed by the given role.
func FilterAuditByRole(entries []entity.AuditEntry, role string) []entity.AuditEntry {
	var filtered []entity.AuditEntry
	for _, e := range entries {
		if e.Role == role {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (uc *OrderUseCase) notify(ctx context.Context, notification *entity.Notification) {
	if _, err := uc.bus.Publish(ctx, notification); err != nil {
		logger.Error("Failed to publish %s notification for order %s: %v", notification.Type, notification.OrderID, err)
	}
}

// setStatus keeps the human label and the canonical key in sync. An empty
// label falls back to the canonical label for the key.
func setStatus(order *entity.Order, key entity.StatusKey, label string) {
	if label == "" {
		label = key.Label()
	}
	order.Status = label
	order.StatusKey = key
	order.UpdatedAt = time.Now()
}

func stampStatusTimestamp(order *entity.Order, key entity.StatusKey, now time.Time) {
	switch key {
	case entity.StatusDealerAccepted:
		order.AcceptedAt = &now
	case entity.StatusPrintingStarted:
		order.PrintingStartedAt = &now
	case entity.StatusPrintingCompleted:
		order.PrintingCompletedAt = &now
	case entity.StatusReadyForPickup:
		order.ReadyAt = &now
	case entity.StatusOutForDelivery:
		order.OutForDeliveryAt = &now
	case entity.StatusDelivered:
		order.DeliveredAt = &now
	case entity.StatusCancelled:
		order.CancelledAt = &now
	case entity.StatusRejected:
		order.RejectedAt = &now
	}
}

func appendHistory(order *entity.Order, key entity.StatusKey, now time.Time) {
	order.StatusHistory = append(order.StatusHistory, entity.StatusHistoryEntry{
		Status:    order.Status,
		StatusKey: key,
		Label:     key.Label(),
		Timestamp: now,
	})
}

func appendChangeLog(order *entity.Order, role, action, previousState string) {
	order.ChangeLog = append(order.ChangeLog, entity.ChangeLogEntry{
		Timestamp:     time.Now(),
		Role:          role,
		Action:        action,
		PreviousState: previousState,
	})
}

// appendAudit records one logical change. No entry is written when nothing
// tracked actually changed.
func appendAudit(order *entity.Order, role, userID string, changes map[string]entity.FieldChange, reason string) {
	if len(changes) == 0 {
		return
	}

	fields := make([]string, 0, len(changes))
	for field := range changes {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	order.AuditLog = append(order.AuditLog, entity.AuditEntry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		Role:          role,
		UserID:        userID,
		ChangedFields: fields,
		Changes:       changes,
		Reason:        reason,
	})
}

// snapshot captures the audited fields as a flat map of primitives.
func snapshot(order *entity.Order) map[string]interface{} {
	return map[string]interface{}{
		"status":                order.Status,
		"statusKey":             string(order.StatusKey),
		"eta":                   order.ETA,
		"cost":                  order.Cost,
		"price":                 order.Price,
		"paymentStatus":         order.PaymentStatus,
		"dealerId":              order.DealerID,
		"dealerName":            order.DealerName,
		"etaOverridden":         order.ETAOverridden,
		"pricingOverridden":     order.PricingOverridden,
		"pricingOverrideReason": order.PricingOverrideReason,
		"rejectionReason":       order.RejectionReason,
	}
}

// buildChanges keeps only fields whose value actually differs between the
// two snapshots.
func buildChanges(previous, current map[string]interface{}) map[string]entity.FieldChange {
	changes := make(map[string]entity.FieldChange)
	for _, field := range auditedFields {
		if previous[field] != current[field] {
			changes[field] = entity.FieldChange{
				Previous: previous[field],
				Current:  current[field],
			}
		}
	}
	return changes
}

func statusMessage(orderID string, key entity.StatusKey) string {
	switch key {
	case entity.StatusPrintingStarted:
		return fmt.Sprintf("Printing has started for order %s", orderID)
	case entity.StatusPrintingCompleted:
		return fmt.Sprintf("Printing is complete for order %s", orderID)
	case entity.StatusReadyForPickup:
		return fmt.Sprintf("Order %s is ready for pickup", orderID)
	case entity.StatusOutForDelivery:
		return fmt.Sprintf("Order %s is out for delivery", orderID)
	case entity.StatusDelivered:
		return fmt.Sprintf("Order %s has been delivered", orderID)
	default:
		return fmt.Sprintf("Order %s is now %s", orderID, key.Label())
	}
}

// generateOrderID follows the original id scheme: creation timestamp plus a
// random suffix.
func generateOrderID() string {
	return fmt.Sprintf("PE-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

func formatPrice(cost float64) string {
	return "₹" + strconv.FormatFloat(cost, 'f', -1, 64)
}
