package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printmarket/internal/domain/entity"
)

func seedDealerOrder(t *testing.T, env *testEnv, id string, key entity.StatusKey, cost float64, paymentStatus, eta string) {
	t.Helper()
	order := &entity.Order{
		ID:            id,
		UserID:        "U1",
		DealerID:      "D1",
		DealerName:    "Quick Prints",
		FileName:      "doc.pdf",
		Status:        key.Label(),
		StatusKey:     key,
		Cost:          cost,
		Price:         formatPrice(cost),
		PaymentStatus: paymentStatus,
		ETA:           eta,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, env.orders.Create(context.Background(), order))
}

func TestGetDashboardStats(t *testing.T) {
	env := newTestEnv()
	uc := NewDealerUseCase(env.orders, env.dealers)
	ctx := context.Background()

	seedDealerOrder(t, env, "PE-1", entity.StatusPending, 100, "Pending", "30 mins")
	seedDealerOrder(t, env, "PE-2", entity.StatusPrintingStarted, 200, "Paid", "1 hour")
	seedDealerOrder(t, env, "PE-3", entity.StatusDelivered, 300, "Paid", "soon")
	seedDealerOrder(t, env, "PE-4", entity.StatusCancelled, 400, "Pending", "")

	stats, err := uc.GetDashboardStats(ctx, "D1")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.ActiveOrders)
	assert.Equal(t, 1, stats.StatusCounts["pending"])
	assert.Equal(t, 1, stats.StatusCounts["delivered"])
	assert.Equal(t, float64(500), stats.Revenue)

	// "30 mins" and "1 hour" average out; unparseable estimates are skipped.
	assert.Equal(t, float64(45), stats.AverageETAMinutes)
}

func TestGetDashboardStatsEmpty(t *testing.T) {
	env := newTestEnv()
	uc := NewDealerUseCase(env.orders, env.dealers)

	stats, err := uc.GetDashboardStats(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, float64(0), stats.AverageETAMinutes)
}

func TestGetEarnings(t *testing.T) {
	env := newTestEnv()
	uc := NewDealerUseCase(env.orders, env.dealers)
	ctx := context.Background()

	seedDealerOrder(t, env, "PE-1", entity.StatusDelivered, 300, "Paid", "")
	seedDealerOrder(t, env, "PE-2", entity.StatusReadyForPickup, 100, "Pending", "")
	seedDealerOrder(t, env, "PE-3", entity.StatusPrintingStarted, 250, "Paid", "")
	seedDealerOrder(t, env, "PE-4", entity.StatusRejected, 500, "Paid", "")
	seedDealerOrder(t, env, "PE-5", entity.StatusPending, 50, "Pending", "")

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	summary, err := uc.GetEarnings(ctx, "D1", from, to)
	require.NoError(t, err)

	assert.Equal(t, float64(400), summary.Earned)
	assert.Equal(t, 2, summary.CompletedOrders)
	assert.Equal(t, float64(200), summary.AverageOrderValue)
	// Paid but still in the pipeline; terminal rejected orders don't count.
	assert.Equal(t, float64(250), summary.Pending)
}

func TestGetEarningsRespectsDateRange(t *testing.T) {
	env := newTestEnv()
	uc := NewDealerUseCase(env.orders, env.dealers)
	ctx := context.Background()

	order := &entity.Order{
		ID:        "PE-old",
		DealerID:  "D1",
		StatusKey: entity.StatusDelivered,
		Cost:      300,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, env.orders.Create(ctx, order))

	summary, err := uc.GetEarnings(ctx, "D1", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, float64(0), summary.Earned)
	assert.Equal(t, 0, summary.CompletedOrders)
}

func TestParseETAMinutes(t *testing.T) {
	for _, tc := range []struct {
		eta     string
		minutes float64
		ok      bool
	}{
		{"30 mins", 30, true},
		{"45min", 45, true},
		{"2 hours", 120, true},
		{"1.5 hr", 90, true},
		{"1 day", 1440, true},
		{"Ready by 5pm", 0, false},
		{"", 0, false},
	} {
		minutes, ok := parseETAMinutes(tc.eta)
		assert.Equal(t, tc.ok, ok, tc.eta)
		assert.Equal(t, tc.minutes, minutes, tc.eta)
	}
}
