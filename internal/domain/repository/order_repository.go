package repository

import (
	"context"

	"printmarket/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Order, int64, error)
	ListByUserID(ctx context.Context, userID string, status string, limit, offset int) ([]*entity.Order, int64, error)
	ListByDealerID(ctx context.Context, dealerID string, status string, limit, offset int) ([]*entity.Order, int64, error)
}
