package usecase

import (
	"context"
	"sync"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/service"
	"printmarket/pkg/errors"
)

// In-memory repository fakes for usecase tests.

type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
	order  []string
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[string]*entity.Order)}
}

func (r *memoryOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	r.order = append(r.order, o.ID)
	return nil
}

func (r *memoryOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	return o, nil
}

func (r *memoryOrderRepo) Update(ctx context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return errors.NotFound("Order", nil)
	}
	r.orders[o.ID] = o
	return nil
}

func (r *memoryOrderRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Order
	for _, id := range r.order {
		o := r.orders[id]
		if statusKey, ok := filter["statusKey"]; ok && string(o.StatusKey) != statusKey {
			continue
		}
		result = append(result, o)
	}
	return result, int64(len(result)), nil
}

func (r *memoryOrderRepo) ListByUserID(ctx context.Context, userID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Order
	for _, id := range r.order {
		o := r.orders[id]
		if o.UserID != userID {
			continue
		}
		if status != "" && o.StatusKey != entity.NormalizeStatusKey(status) {
			continue
		}
		result = append(result, o)
	}
	return result, int64(len(result)), nil
}

func (r *memoryOrderRepo) ListByDealerID(ctx context.Context, dealerID, status string, limit, offset int) ([]*entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Order
	for _, id := range r.order {
		o := r.orders[id]
		if o.DealerID != dealerID {
			continue
		}
		if status != "" && o.StatusKey != entity.NormalizeStatusKey(status) {
			continue
		}
		result = append(result, o)
	}
	return result, int64(len(result)), nil
}

type memoryNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
}

func newMemoryNotificationRepo() *memoryNotificationRepo {
	return &memoryNotificationRepo{}
}

func (r *memoryNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *memoryNotificationRepo) List(ctx context.Context) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out, nil
}

func (r *memoryNotificationRepo) Update(ctx context.Context, n *entity.Notification) error {
	return nil
}

func (r *memoryNotificationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *memoryNotificationRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemoryUserRepo(users ...*entity.User) *memoryUserRepo {
	r := &memoryUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memoryUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return u, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

type memoryDealerRepo struct {
	mu      sync.Mutex
	dealers map[string]*entity.Dealer
}

func newMemoryDealerRepo(dealers ...*entity.Dealer) *memoryDealerRepo {
	r := &memoryDealerRepo{dealers: make(map[string]*entity.Dealer)}
	for _, d := range dealers {
		r.dealers[d.ID] = d
	}
	return r
}

func (r *memoryDealerRepo) Create(ctx context.Context, d *entity.Dealer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dealers[d.ID] = d
	return nil
}

func (r *memoryDealerRepo) GetByID(ctx context.Context, id string) (*entity.Dealer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dealers[id]
	if !ok {
		return nil, errors.NotFound("Dealer", nil)
	}
	return d, nil
}

func (r *memoryDealerRepo) Update(ctx context.Context, d *entity.Dealer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dealers[d.ID] = d
	return nil
}

func (r *memoryDealerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Dealer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Dealer
	for _, d := range r.dealers {
		result = append(result, d)
	}
	return result, int64(len(result)), nil
}

type memoryBatchRepo struct {
	mu      sync.Mutex
	batches map[string]*entity.Batch
}

func newMemoryBatchRepo() *memoryBatchRepo {
	return &memoryBatchRepo{batches: make(map[string]*entity.Batch)}
}

func (r *memoryBatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
	return nil
}

func (r *memoryBatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, errors.NotFound("Batch", nil)
	}
	return b, nil
}

func (r *memoryBatchRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Batch, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Batch
	for _, b := range r.batches {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, int64(len(result)), nil
}

// testEnv wires the usecases against in-memory stores and a bus with no
// remote broadcaster.
type testEnv struct {
	orders  *memoryOrderRepo
	users   *memoryUserRepo
	dealers *memoryDealerRepo
	batches *memoryBatchRepo
	bus     *service.NotificationBus
	orderUC *OrderUseCase
	chatUC  *ChatUseCase
}

func newTestEnv() *testEnv {
	orders := newMemoryOrderRepo()
	users := newMemoryUserRepo(
		&entity.User{ID: "U1", FullName: "Asha Rao", Role: entity.RoleCustomer},
		&entity.User{ID: "D1", FullName: "Quick Prints", Role: entity.RoleDealer},
		&entity.User{ID: "D2", FullName: "City Copy Centre", Role: entity.RoleDealer},
		&entity.User{ID: "A1", FullName: "Admin", Role: entity.RoleAdmin},
	)
	dealers := newMemoryDealerRepo(
		&entity.Dealer{ID: "D1", Name: "Quick Prints", ShopName: "Quick Prints, MG Road", Rating: 4.6},
		&entity.Dealer{ID: "D2", Name: "City Copy Centre", ShopName: "City Copy Centre", Rating: 4.2},
	)
	batches := newMemoryBatchRepo()
	bus := service.NewNotificationBus(newMemoryNotificationRepo(), nil, 100)

	orderUC := NewOrderUseCase(orders, dealers, users, batches, bus)
	chatUC := NewChatUseCase(orders, users, bus, orderUC)

	return &testEnv{
		orders:  orders,
		users:   users,
		dealers: dealers,
		batches: batches,
		bus:     bus,
		orderUC: orderUC,
		chatUC:  chatUC,
	}
}

// seedOrder installs a pending order assigned to dealer D1 for customer U1.
func (env *testEnv) seedOrder(id string) *entity.Order {
	order := &entity.Order{
		ID:            id,
		UserID:        "U1",
		CustomerName:  "Asha Rao",
		DealerID:      "D1",
		DealerName:    "Quick Prints",
		FileName:      "thesis.pdf",
		Pages:         120,
		Copies:        2,
		Status:        entity.StatusPending.Label(),
		StatusKey:     entity.StatusPending,
		Cost:          450,
		Price:         "₹450",
		PaymentMethod: "COD",
		PaymentStatus: "Pending",
	}
	order.StatusHistory = append(order.StatusHistory, entity.StatusHistoryEntry{
		Status:    order.Status,
		StatusKey: order.StatusKey,
		Label:     order.StatusKey.Label(),
	})
	env.orders.Create(context.Background(), order)
	return order
}
