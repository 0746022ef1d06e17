// internal/core/services/ledger.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// LedgerService owns every stock mutation. Each write runs as one
// transaction with the touched rows locked, so concurrent writers on the
// same record serialize instead of overwriting each other.
type LedgerService struct {
	repo     ports.InventoryRepository
	cache    ports.CacheInvalidator
	notifier ports.ReorderNotifier
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.LedgerService = (*LedgerService)(nil)

// NewLedgerService creates a new ledger service. cache and notifier may
// be nil.
func NewLedgerService(repo ports.InventoryRepository, cache ports.CacheInvalidator, notifier ports.ReorderNotifier, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		logger:   logger.With(slog.String("service", "ledger")),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// ReadDetail returns the enriched record.
func (s *LedgerService) ReadDetail(ctx context.Context, id int64) (*domain.InventoryView, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return domain.NewInventoryView(entry), nil
}

// List returns enriched records, narrowed to a warehouse when one is set.
// The low-stock filter runs on the enriched views.
func (s *LedgerService) List(ctx context.Context, filter domain.InventoryFilter) ([]*domain.InventoryView, error) {
	var (
		entries []*domain.InventoryEntry
		err     error
	)
	if filter.WarehouseID != nil {
		entries, err = s.repo.ListByWarehouse(ctx, *filter.WarehouseID)
	} else {
		entries, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	views := make([]*domain.InventoryView, 0, len(entries))
	for _, e := range entries {
		v := domain.NewInventoryView(e)
		if filter.LowStockOnly && !v.IsLowStock {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// LowStock returns every record at or below its reorder level.
func (s *LedgerService) LowStock(ctx context.Context) ([]*domain.InventoryView, error) {
	return s.List(ctx, domain.InventoryFilter{LowStockOnly: true})
}

// Adjust replaces on-hand, reserved and unit cost of a record.
func (s *LedgerService) Adjust(ctx context.Context, id int64, req domain.AdjustInventory) (*domain.InventoryView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var saved *domain.InventoryRecord
	err := s.repo.WithinTx(ctx, func(tx ports.InventoryTx) error {
		rec, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		saved = rec

		rec.QuantityOnHand = req.QuantityOnHand
		rec.QuantityReserved = req.QuantityReserved
		rec.UnitCost = req.UnitCost
		rec.Touch(s.now())

		return tx.Save(ctx, rec)
	})
	if err != nil {
		return nil, wrapLedgerError("adjust inventory", err)
	}

	return s.afterWrite(ctx, saved), nil
}

// Transfer moves on-hand stock of a product between two warehouses. A
// missing destination record is created at zero before it is credited.
func (s *LedgerService) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result domain.TransferResult
	err := s.repo.WithinTx(ctx, func(tx ports.InventoryTx) error {
		locked := make(map[int64]*domain.InventoryRecord, 2)
		for _, wh := range lockOrder(req.FromWarehouseID, req.ToWarehouseID) {
			rec, err := tx.FindByProductAndWarehouseForUpdate(ctx, req.ProductID, wh)
			if err != nil {
				return err
			}
			locked[wh] = rec
		}

		src := locked[req.FromWarehouseID]
		if src == nil {
			return domain.ErrSourceNotFound
		}
		if src.QuantityAvailable() < req.Quantity {
			return fmt.Errorf("%w: requested %d, available %d",
				domain.ErrInsufficientStock, req.Quantity, src.QuantityAvailable())
		}

		now := s.now()
		dst := locked[req.ToWarehouseID]
		if dst == nil {
			var err error
			if dst, result.DestinationCreated, err = s.ensureDestination(ctx, tx, req, src, now); err != nil {
				return err
			}
		}

		src.QuantityOnHand -= req.Quantity
		dst.QuantityOnHand += req.Quantity
		src.Touch(now)
		dst.Touch(now)

		if err := src.Validate(); err != nil {
			return err
		}
		if err := tx.Save(ctx, src); err != nil {
			return err
		}
		if err := tx.Save(ctx, dst); err != nil {
			return err
		}

		result.Source = *src
		result.Destination = *dst
		return nil
	})
	if err != nil {
		return nil, wrapLedgerError("transfer stock", err)
	}

	s.invalidate(ctx)
	s.notify(ctx, result.Source.ID, result.Destination.ID)
	return &result, nil
}

// ensureDestination inserts a zero record for the destination, or finds
// the one a concurrent transfer committed first, and locks it.
func (s *LedgerService) ensureDestination(ctx context.Context, tx ports.InventoryTx, req domain.TransferRequest, src *domain.InventoryRecord, now time.Time) (*domain.InventoryRecord, bool, error) {
	zero := &domain.InventoryRecord{
		ProductID:   req.ProductID,
		WarehouseID: req.ToWarehouseID,
		UnitCost:    src.UnitCost,
	}
	zero.Touch(now)

	created, err := tx.CreateIfMissing(ctx, zero)
	if err != nil {
		return nil, false, err
	}
	dst, err := tx.FindByProductAndWarehouseForUpdate(ctx, req.ProductID, req.ToWarehouseID)
	if err != nil {
		return nil, false, err
	}
	if dst == nil {
		return nil, false, fmt.Errorf("%w: destination record missing after insert", domain.ErrStorageUnavailable)
	}
	return dst, created, nil
}

// RecordCount applies a physical count: on-hand becomes the counted
// quantity, reserved is clamped to it and the count date is stamped.
func (s *LedgerService) RecordCount(ctx context.Context, id int64, counted int) (*domain.InventoryView, error) {
	if counted < 0 {
		return nil, fmt.Errorf("%w: counted quantity cannot be negative", domain.ErrInvalidQuantity)
	}

	var saved *domain.InventoryRecord
	err := s.repo.WithinTx(ctx, func(tx ports.InventoryTx) error {
		rec, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		saved = rec

		now := s.now().UTC()
		rec.QuantityOnHand = counted
		if rec.QuantityReserved > counted {
			rec.QuantityReserved = counted
		}
		rec.Touch(now)
		rec.LastCountDate = &now

		return tx.Save(ctx, rec)
	})
	if err != nil {
		return nil, wrapLedgerError("record count", err)
	}

	return s.afterWrite(ctx, saved), nil
}

// Track starts tracking a product in a warehouse.
func (s *LedgerService) Track(ctx context.Context, req domain.CreateInventory) (*domain.InventoryView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec := &domain.InventoryRecord{
		ProductID:        req.ProductID,
		WarehouseID:      req.WarehouseID,
		QuantityOnHand:   req.QuantityOnHand,
		QuantityReserved: req.QuantityReserved,
		UnitCost:         req.UnitCost,
	}
	rec.Touch(s.now())

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, wrapLedgerError("track inventory", err)
	}

	return s.afterWrite(ctx, rec), nil
}

// afterWrite returns the enriched view of a committed record. When the
// reload fails the view carries the committed quantities without product
// and warehouse names.
func (s *LedgerService) afterWrite(ctx context.Context, rec *domain.InventoryRecord) *domain.InventoryView {
	s.invalidate(ctx)

	view, err := s.ReadDetail(ctx, rec.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to reload committed record",
			slog.Int64("inventory_id", rec.ID),
			slog.String("error", err.Error()))
		return domain.NewInventoryView(&domain.InventoryEntry{Record: *rec})
	}
	s.publish(ctx, view)
	return view
}

func (s *LedgerService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateInventory(ctx)
	}
}

func (s *LedgerService) notify(ctx context.Context, ids ...int64) {
	if s.notifier == nil {
		return
	}
	for _, id := range ids {
		view, err := s.ReadDetail(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to reload record for reorder check",
				slog.Int64("inventory_id", id),
				slog.String("error", err.Error()))
			continue
		}
		s.publish(ctx, view)
	}
}

func (s *LedgerService) publish(ctx context.Context, view *domain.InventoryView) {
	if s.notifier == nil || !view.IsLowStock {
		return
	}
	if _, err := s.notifier.Notify(ctx, view); err != nil {
		s.logger.WarnContext(ctx, "failed to publish reorder alert",
			slog.Int64("inventory_id", view.ID),
			slog.String("error", err.Error()))
	}
}

// lockOrder returns warehouse ids in ascending order so that opposing
// transfers acquire row locks in the same sequence.
func lockOrder(a, b int64) []int64 {
	if a > b {
		return []int64{b, a}
	}
	return []int64{a, b}
}

// wrapLedgerError keeps domain errors matchable and labels the operation.
func wrapLedgerError(op string, err error) error {
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrSourceNotFound,
		domain.ErrInsufficientStock,
		domain.ErrInvalidQuantity,
		domain.ErrDuplicateInventory,
		domain.ErrInvalidInput,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
