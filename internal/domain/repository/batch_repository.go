package repository

import (
	"context"

	"printmarket/internal/domain/entity"
)

type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Batch, int64, error)
}
