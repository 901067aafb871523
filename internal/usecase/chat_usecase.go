package usecase

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/internal/domain/service"
	"printmarket/pkg/errors"
	"printmarket/pkg/logger"
)

// ChatUseCase manages the per-order message thread. It shares the order
// lock map with the lifecycle engine because messages live on the order
// document and both write the whole document.
type ChatUseCase struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	bus       *service.NotificationBus
	locks     *keyedMutex
}

func NewChatUseCase(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	bus *service.NotificationBus,
	orders *OrderUseCase,
) *ChatUseCase {
	return &ChatUseCase{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		bus:       bus,
		locks:     orders.locks,
	}
}

type SendMessageInput struct {
	OrderID string
	Text    string
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.ChatMessage, error) {
	if input.Text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, errors.NotFound("Sender", err)
	}

	unlock := uc.locks.Lock(input.OrderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if !isParticipant(order, senderID, sender.Role) {
		return nil, errors.Forbidden("You are not a participant in this order's chat", nil)
	}

	message := entity.ChatMessage{
		ID:         uuid.New().String(),
		Text:       input.Text,
		SenderID:   senderID,
		SenderRole: sender.Role,
		SenderName: sender.FullName,
		Timestamp:  time.Now(),
		Status:     entity.MessageStatusSent,
	}

	order.Messages = append(order.Messages, message)
	order.UpdatedAt = time.Now()

	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	// Messages from the customer go to the dealer; messages from the
	// dealer or an admin go to the customer.
	target := ""
	switch sender.Role {
	case entity.RoleCustomer:
		if order.DealerID != "" {
			target = entity.DealerTarget(order.DealerID)
		}
	default:
		target = order.UserID
	}

	if target != "" {
		notification := &entity.Notification{
			Type:    entity.NotificationNewMessage,
			Title:   "New Message",
			Message: fmt.Sprintf("%s: %s", message.SenderName, truncate(message.Text, 80)),
			UserID:  target,
			OrderID: order.ID,
		}
		if _, err := uc.bus.Publish(ctx, notification); err != nil {
			logger.Error("Failed to publish new_message notification for order %s: %v", order.ID, err)
		}
	}

	return &message, nil
}

// MarkDelivered acknowledges delivery of a message, advancing it from sent
// to delivered. Acknowledging an already delivered or read message is a
// no-op; status never moves backward.
func (uc *ChatUseCase) MarkDelivered(ctx context.Context, orderID, messageID string) error {
	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	for i := range order.Messages {
		if order.Messages[i].ID != messageID {
			continue
		}
		if order.Messages[i].Status != entity.MessageStatusSent {
			return nil
		}
		order.Messages[i].Status = entity.MessageStatusDelivered
		return uc.orderRepo.Update(ctx, order)
	}

	return errors.NotFound("Message", nil)
}

// MarkMessagesAsRead flips every message not authored by userID to read.
// One-way: a message already read stays read.
func (uc *ChatUseCase) MarkMessagesAsRead(ctx context.Context, orderID, userID string) error {
	unlock := uc.locks.Lock(orderID)
	defer unlock()

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	touched := false
	for i := range order.Messages {
		m := &order.Messages[i]
		if m.SenderID == userID || m.Status == entity.MessageStatusRead {
			continue
		}
		m.Status = entity.MessageStatusRead
		m.ReadAt = &now
		touched = true
	}

	if !touched {
		return nil
	}
	return uc.orderRepo.Update(ctx, order)
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, actorID, role, orderID string) ([]entity.ChatMessage, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(order, actorID, role) {
		return nil, errors.Forbidden("You are not a participant in this order's chat", nil)
	}
	return order.Messages, nil
}

// GetUnreadCount counts messages addressed to userID that are not yet read.
func (uc *ChatUseCase) GetUnreadCount(ctx context.Context, orderID, userID string) (int, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range order.Messages {
		if m.SenderID != userID && m.Status != entity.MessageStatusRead {
			count++
		}
	}
	return count, nil
}

func isParticipant(order *entity.Order, actorID, role string) bool {
	if role == entity.RoleAdmin {
		return true
	}
	return order.UserID == actorID || order.DealerID == actorID
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + "…"
}
