package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
)

// DealerUseCase computes the dealer-facing read views. Everything here is a
// stateless aggregation recomputed on demand; it reflects the order store
// at query time and nothing more.
type DealerUseCase struct {
	orderRepo  repository.OrderRepository
	dealerRepo repository.DealerRepository
}

func NewDealerUseCase(orderRepo repository.OrderRepository, dealerRepo repository.DealerRepository) *DealerUseCase {
	return &DealerUseCase{
		orderRepo:  orderRepo,
		dealerRepo: dealerRepo,
	}
}

type DashboardStats struct {
	TotalOrders       int            `json:"total_orders"`
	ActiveOrders      int            `json:"active_orders"`
	StatusCounts      map[string]int `json:"status_counts"`
	Revenue           float64        `json:"revenue"`
	AverageETAMinutes float64        `json:"average_eta_minutes"`
}

type EarningsSummary struct {
	Earned            float64 `json:"earned"`
	Pending           float64 `json:"pending"`
	CompletedOrders   int     `json:"completed_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
}

func (uc *DealerUseCase) ListDealers(ctx context.Context, limit, offset int) ([]*entity.Dealer, int64, error) {
	return uc.dealerRepo.List(ctx, limit, offset)
}

func (uc *DealerUseCase) GetDealer(ctx context.Context, dealerID string) (*entity.Dealer, error) {
	return uc.dealerRepo.GetByID(ctx, dealerID)
}

// GetDashboardStats aggregates the dealer's orders: counts per status,
// revenue over paid orders, and the average ETA parsed heuristically from
// the free-text estimates.
func (uc *DealerUseCase) GetDashboardStats(ctx context.Context, dealerID string) (*DashboardStats, error) {
	orders, _, err := uc.orderRepo.ListByDealerID(ctx, dealerID, "", 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{StatusCounts: make(map[string]int)}
	var etaTotal float64
	var etaCount int

	for _, order := range orders {
		stats.TotalOrders++
		stats.StatusCounts[string(order.StatusKey)]++
		if !order.StatusKey.IsTerminal() {
			stats.ActiveOrders++
		}
		if order.PaymentStatus == "Paid" {
			stats.Revenue += order.Cost
		}
		if minutes, ok := parseETAMinutes(order.ETA); ok {
			etaTotal += minutes
			etaCount++
		}
	}

	if etaCount > 0 {
		stats.AverageETAMinutes = etaTotal / float64(etaCount)
	}
	return stats, nil
}

// GetEarnings sums the dealer's earnings over a date range. Earned covers
// delivered and ready-for-pickup orders; pending covers paid orders still
// moving through the pipeline.
func (uc *DealerUseCase) GetEarnings(ctx context.Context, dealerID string, from, to time.Time) (*EarningsSummary, error) {
	orders, _, err := uc.orderRepo.ListByDealerID(ctx, dealerID, "", 0, 0)
	if err != nil {
		return nil, err
	}

	summary := &EarningsSummary{}
	for _, order := range orders {
		if order.CreatedAt.Before(from) || order.CreatedAt.After(to) {
			continue
		}
		switch order.StatusKey {
		case entity.StatusDelivered, entity.StatusReadyForPickup:
			summary.Earned += order.Cost
			summary.CompletedOrders++
		default:
			if order.PaymentStatus == "Paid" && !order.StatusKey.IsTerminal() {
				summary.Pending += order.Cost
			}
		}
	}

	if summary.CompletedOrders > 0 {
		summary.AverageOrderValue = summary.Earned / float64(summary.CompletedOrders)
	}
	return summary, nil
}

var etaPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(min|minute|hr|hour|day)`)

// parseETAMinutes pulls a duration out of free-text estimates like
// "30 mins", "2 hours" or "1 day". Unparseable text is skipped rather than
// guessed at.
func parseETAMinutes(eta string) (float64, bool) {
	match := etaPattern.FindStringSubmatch(strings.ToLower(eta))
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	switch match[2] {
	case "hr", "hour":
		return value * 60, true
	case "day":
		return value * 24 * 60, true
	default:
		return value, true
	}
}
