package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/pkg/errors"
)

type firestoreBatchRepository struct {
	client *firestore.Client
}

func NewFirestoreBatchRepository(client *firestore.Client) repository.BatchRepository {
	return &firestoreBatchRepository{
		client: client,
	}
}

func (r *firestoreBatchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	_, err := r.client.Collection("batches").Doc(batch.ID).Set(ctx, batch)
	if err != nil {
		return errors.Internal("Failed to create batch", err)
	}
	return nil
}

func (r *firestoreBatchRepository) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	doc, err := r.client.Collection("batches").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Batch", err)
		}
		return nil, errors.Internal("Failed to get batch", err)
	}

	var batch entity.Batch
	if err := doc.DataTo(&batch); err != nil {
		return nil, errors.Internal("Failed to parse batch data", err)
	}

	return &batch, nil
}

func (r *firestoreBatchRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Batch, int64, error) {
	query := r.client.Collection("batches").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count batches", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var batches []*entity.Batch

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate batches", err)
		}

		var batch entity.Batch
		if err := doc.DataTo(&batch); err != nil {
			return nil, 0, errors.Internal("Failed to parse batch data", err)
		}
		batches = append(batches, &batch)
	}

	return batches, total, nil
}
