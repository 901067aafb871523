package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/pkg/errors"
)

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{
		client: client,
	}
}

func (r *firestoreOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_, err := r.client.Collection("orders").Doc(order.ID).Set(ctx, order)
	if err != nil {
		return errors.Internal("Failed to create order", err)
	}

	return nil
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	doc, err := r.client.Collection("orders").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Order", err)
		}
		return nil, errors.Internal("Failed to get order", err)
	}

	var order entity.Order
	if err := doc.DataTo(&order); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}

	normalizeOrder(&order)
	return &order, nil
}

func (r *firestoreOrderRepository) Update(ctx context.Context, order *entity.Order) error {
	order.UpdatedAt = time.Now()
	normalizeOrder(order)

	_, err := r.client.Collection("orders").Doc(order.ID).Set(ctx, order)
	if err != nil {
		return errors.Internal("Failed to update order", err)
	}

	return nil
}

func (r *firestoreOrderRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Order, int64, error) {
	query := r.client.Collection("orders").Query.OrderBy("createdAt", firestore.Desc)

	for key, value := range filter {
		query = query.Where(key, "==", value)
	}

	return r.run(ctx, query, limit, offset)
}

func (r *firestoreOrderRepository) ListByUserID(ctx context.Context, userID string, statusKey string, limit, offset int) ([]*entity.Order, int64, error) {
	query := r.client.Collection("orders").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	if statusKey != "" {
		query = query.Where("statusKey", "==", string(entity.NormalizeStatusKey(statusKey)))
	}

	return r.run(ctx, query, limit, offset)
}

func (r *firestoreOrderRepository) ListByDealerID(ctx context.Context, dealerID string, statusKey string, limit, offset int) ([]*entity.Order, int64, error) {
	query := r.client.Collection("orders").
		Where("dealerId", "==", dealerID).
		OrderBy("createdAt", firestore.Desc)

	if statusKey != "" {
		query = query.Where("statusKey", "==", string(entity.NormalizeStatusKey(statusKey)))
	}

	return r.run(ctx, query, limit, offset)
}

func (r *firestoreOrderRepository) run(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Order, int64, error) {
	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count orders", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var orders []*entity.Order

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate orders", err)
		}

		var order entity.Order
		if err := doc.DataTo(&order); err != nil {
			return nil, 0, errors.Internal("Failed to parse order data", err)
		}
		normalizeOrder(&order)
		orders = append(orders, &order)
	}

	return orders, total, nil
}

// normalizeOrder rewrites legacy status spellings to the canonical keys at
// the storage boundary so nothing above it ever sees an alias.
func normalizeOrder(order *entity.Order) {
	order.StatusKey = entity.NormalizeStatusKey(string(order.StatusKey))
	for i := range order.StatusHistory {
		order.StatusHistory[i].StatusKey = entity.NormalizeStatusKey(string(order.StatusHistory[i].StatusKey))
	}
}
