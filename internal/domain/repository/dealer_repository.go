package repository

import (
	"context"

	"printmarket/internal/domain/entity"
)

type DealerRepository interface {
	Create(ctx context.Context, dealer *entity.Dealer) error
	GetByID(ctx context.Context, id string) (*entity.Dealer, error)
	Update(ctx context.Context, dealer *entity.Dealer) error
	List(ctx context.Context, limit, offset int) ([]*entity.Dealer, int64, error)
}
