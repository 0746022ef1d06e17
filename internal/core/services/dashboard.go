// internal/core/services/dashboard.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// Dashboard cache lifetime and limits.
const (
	DashboardCacheTTL = 5 * time.Minute

	topProductsLimit  = 5
	topSuppliersLimit = 5
)

var (
	keyDashboardStats     = ports.PrefixDashboard.Key("stats")
	keyDashboardInventory = ports.PrefixDashboard.Key("inventory")
	keyDashboardSuppliers = ports.PrefixDashboard.Key("suppliers")
)

// DashboardService aggregates reporting views and caches them
type DashboardService struct {
	repo   ports.DashboardRepository
	ledger ports.LedgerService
	cache  ports.CacheRepository
	logger *slog.Logger
	ttl    time.Duration
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(repo ports.DashboardRepository, ledger ports.LedgerService, cache ports.CacheRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		ledger: ledger,
		cache:  cache,
		logger: logger.With(slog.String("service", "dashboard")),
		ttl:    DashboardCacheTTL,
	}
}

// WithTTL overrides the dashboard cache lifetime.
func (s *DashboardService) WithTTL(ttl time.Duration) *DashboardService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Stats returns the headline dashboard figures.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := s.cached(ctx, keyDashboardStats, &stats, func() (interface{}, error) { return s.computeStats(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}

// InventoryStats summarises every inventory record.
func (s *DashboardService) InventoryStats(ctx context.Context) (*domain.InventoryStats, error) {
	var stats domain.InventoryStats
	if err := s.cached(ctx, keyDashboardInventory, &stats, func() (interface{}, error) { return s.computeInventoryStats(ctx) }); err != nil {
		return nil, fmt.Errorf("failed to load inventory stats: %w", err)
	}
	return &stats, nil
}

// SupplierStats ranks suppliers by product count.
func (s *DashboardService) SupplierStats(ctx context.Context) ([]domain.SupplierStats, error) {
	var stats []domain.SupplierStats
	fetch := func() (interface{}, error) { return s.repo.TopSuppliers(ctx, topSuppliersLimit) }
	if err := s.cached(ctx, keyDashboardSuppliers, &stats, fetch); err != nil {
		return nil, fmt.Errorf("failed to load supplier stats: %w", err)
	}
	return stats, nil
}

// Refresh recomputes every view and stores it in the cache.
func (s *DashboardService) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return err
	}
	inv, err := s.computeInventoryStats(ctx)
	if err != nil {
		return err
	}
	suppliers, err := s.repo.TopSuppliers(ctx, topSuppliersLimit)
	if err != nil {
		return fmt.Errorf("failed to load supplier stats: %w", err)
	}

	for key, value := range map[string]interface{}{
		keyDashboardStats:     stats,
		keyDashboardInventory: inv,
		keyDashboardSuppliers: suppliers,
	} {
		if err := s.cache.SetWithTTL(ctx, key, value, s.ttl); err != nil {
			return fmt.Errorf("failed to cache %s: %w", key, err)
		}
	}

	s.logger.InfoContext(ctx, "dashboard cache refreshed")
	return nil
}

func (s *DashboardService) cached(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error)) error {
	if s.cache != nil {
		return s.cache.GetOrSet(ctx, key, dest, fetch, s.ttl)
	}

	v, err := fetch()
	if err != nil {
		return err
	}
	return assign(dest, v)
}

func (s *DashboardService) computeStats(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	if stats.StockByCategory, err = s.repo.StockByCategory(ctx); err != nil {
		return nil, err
	}
	if stats.TopProducts, err = s.repo.TopProducts(ctx, topProductsLimit); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *DashboardService) computeInventoryStats(ctx context.Context) (*domain.InventoryStats, error) {
	views, err := s.ledger.List(ctx, domain.InventoryFilter{})
	if err != nil {
		return nil, err
	}
	return SummarizeInventory(views), nil
}

// SummarizeInventory totals a set of enriched records.
func SummarizeInventory(views []*domain.InventoryView) *domain.InventoryStats {
	stats := &domain.InventoryStats{
		TotalItems:   len(views),
		TotalValue:   decimal.Zero,
		AverageValue: decimal.Zero,
	}
	for _, v := range views {
		stats.TotalQuantity += v.QuantityOnHand
		stats.TotalValue = stats.TotalValue.Add(v.TotalValue)
		if v.IsLowStock {
			stats.LowStockCount++
		}
	}
	if stats.TotalItems > 0 {
		stats.AverageValue = stats.TotalValue.Div(decimal.NewFromInt(int64(stats.TotalItems))).Round(2)
	}
	return stats
}

// assign copies a fetched value into dest when both share a type.
func assign(dest, v interface{}) error {
	switch d := dest.(type) {
	case *domain.DashboardStats:
		*d = *v.(*domain.DashboardStats)
	case *domain.InventoryStats:
		*d = *v.(*domain.InventoryStats)
	case *[]domain.SupplierStats:
		*d = v.([]domain.SupplierStats)
	default:
		return fmt.Errorf("unsupported dashboard value %T", dest)
	}
	return nil
}
