package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/pkg/errors"
)

type firestoreDealerRepository struct {
	client *firestore.Client
}

func NewFirestoreDealerRepository(client *firestore.Client) repository.DealerRepository {
	return &firestoreDealerRepository{
		client: client,
	}
}

func (r *firestoreDealerRepository) Create(ctx context.Context, dealer *entity.Dealer) error {
	if dealer.ID == "" {
		dealer.ID = uuid.New().String()
	}

	now := time.Now()
	dealer.CreatedAt = now
	dealer.UpdatedAt = now

	_, err := r.client.Collection("dealers").Doc(dealer.ID).Set(ctx, dealer)
	if err != nil {
		return errors.Internal("Failed to create dealer", err)
	}
	return nil
}

func (r *firestoreDealerRepository) GetByID(ctx context.Context, id string) (*entity.Dealer, error) {
	doc, err := r.client.Collection("dealers").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Dealer", err)
		}
		return nil, errors.Internal("Failed to get dealer", err)
	}

	var dealer entity.Dealer
	if err := doc.DataTo(&dealer); err != nil {
		return nil, errors.Internal("Failed to parse dealer data", err)
	}

	return &dealer, nil
}

func (r *firestoreDealerRepository) Update(ctx context.Context, dealer *entity.Dealer) error {
	dealer.UpdatedAt = time.Now()

	_, err := r.client.Collection("dealers").Doc(dealer.ID).Set(ctx, dealer)
	if err != nil {
		return errors.Internal("Failed to update dealer", err)
	}
	return nil
}

func (r *firestoreDealerRepository) List(ctx context.Context, limit, offset int) ([]*entity.Dealer, int64, error) {
	query := r.client.Collection("dealers").Query.OrderBy("rating", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count dealers", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var dealers []*entity.Dealer

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate dealers", err)
		}

		var dealer entity.Dealer
		if err := doc.DataTo(&dealer); err != nil {
			return nil, 0, errors.Internal("Failed to parse dealer data", err)
		}
		dealers = append(dealers, &dealer)
	}

	return dealers, total, nil
}
