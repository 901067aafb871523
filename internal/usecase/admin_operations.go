package usecase

import (
	"context"
	"fmt"
	"time"

	"printmarket/internal/domain/entity"
	"printmarket/pkg/errors"
)

// Admin operations on the order lifecycle. These share the per-order lock
// with the dealer and customer operations so all mutations of one order
// stay serialized.

// ReassignDealer replaces the order's dealer. Both the customer and the new
// dealer are notified.
func (uc *OrderUseCase) ReassignDealer(ctx context.Context, adminID, orderID, dealerID string) (*entity.Order, error) {
	if dealerID == "" {
		return nil, errors.BadRequest("Dealer ID is required", nil)
	}

	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StatusKey.IsTerminal() {
		return nil, errors.InvalidTransition("Cannot reassign a closed order")
	}

	dealer, err := uc.dealerRepo.GetByID(ctx, dealerID)
	if err != nil {
		return nil, err
	}

	prev := snapshot(order)
	order.DealerID = dealer.ID
	order.DealerName = dealer.Name
	order.UpdatedAt = time.Now()
	appendChangeLog(order, entity.RoleAdmin, "dealer_reassigned", prev["status"].(string))
	appendAudit(order, entity.RoleAdmin, adminID, buildChanges(prev, snapshot(order)), "")

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderDealerReassigned,
		Title:   "Dealer Changed",
		Message: fmt.Sprintf("Order %s has been reassigned to %s", order.ID, dealer.Name),
		UserID:  order.UserID,
		OrderID: order.ID,
	})
	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderAssigned,
		Title:   "Order Assigned",
		Message: fmt.Sprintf("Order %s has been assigned to you", order.ID),
		UserID:  entity.DealerTarget(dealer.ID),
		OrderID: order.ID,
	})

	return order, nil
}

// OverrideETA sets the ETA on behalf of the dealer and flags the override.
func (uc *OrderUseCase) OverrideETA(ctx context.Context, adminID, orderID, newETA string) (*entity.Order, error) {
	if newETA == "" {
		return nil, errors.BadRequest("ETA is required", nil)
	}

	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StatusKey.IsTerminal() {
		return nil, errors.InvalidTransition("Cannot override ETA of a closed order")
	}

	prev := snapshot(order)
	now := time.Now()
	order.ETA = newETA
	order.ETAOverridden = true
	order.ETAOverriddenAt = &now
	order.UpdatedAt = now
	appendChangeLog(order, entity.RoleAdmin, "eta_overridden", prev["status"].(string))
	appendAudit(order, entity.RoleAdmin, adminID, buildChanges(prev, snapshot(order)), "")

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Estimated time for order %s was set to %s by support", order.ID, newETA)
	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderETAOverridden,
		Title:   "ETA Updated",
		Message: message,
		UserID:  order.UserID,
		OrderID: order.ID,
	})
	if order.DealerID != "" {
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationOrderETAOverridden,
			Title:   "ETA Overridden",
			Message: message,
			UserID:  entity.DealerTarget(order.DealerID),
			OrderID: order.ID,
		})
	}

	return order, nil
}

// OverridePricing sets a new cost, recomputes the display price and records
// the mandatory reason.
func (uc *OrderUseCase) OverridePricing(ctx context.Context, adminID, orderID string, newCost float64, reason string) (*entity.Order, error) {
	if newCost <= 0 {
		return nil, errors.BadRequest("Override price must be positive", nil)
	}
	if reason == "" {
		return nil, errors.BadRequest("Override reason is required", nil)
	}

	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StatusKey.IsTerminal() {
		return nil, errors.InvalidTransition("Cannot override pricing of a closed order")
	}

	prev := snapshot(order)
	now := time.Now()
	order.Cost = newCost
	order.Price = formatPrice(newCost)
	order.PricingOverridden = true
	order.PricingOverrideReason = reason
	order.PricingOverriddenAt = &now
	order.UpdatedAt = now
	appendChangeLog(order, entity.RoleAdmin, "pricing_overridden", prev["status"].(string))
	appendAudit(order, entity.RoleAdmin, adminID, buildChanges(prev, snapshot(order)), reason)

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Price for order %s was adjusted to %s (%s)", order.ID, order.Price, reason)
	uc.notify(ctx, &entity.Notification{
		Type:    entity.NotificationOrderPricingOverridden,
		Title:   "Price Adjusted",
		Message: message,
		UserID:  order.UserID,
		OrderID: order.ID,
	})
	if order.DealerID != "" {
		uc.notify(ctx, &entity.Notification{
			Type:    entity.NotificationOrderPricingOverridden,
			Title:   "Price Adjusted",
			Message: message,
			UserID:  entity.DealerTarget(order.DealerID),
			OrderID: order.ID,
		})
	}

	return order, nil
}

// Announce broadcasts an admin announcement to every user.
func (uc *OrderUseCase) Announce(ctx context.Context, title, message string) (*entity.Notification, error) {
	if title == "" || message == "" {
		return nil, errors.BadRequest("Announcement title and message are required", nil)
	}

	return uc.bus.Publish(ctx, &entity.Notification{
		Type:    entity.NotificationAdminAnnouncement,
		Title:   title,
		Message: message,
	})
}
