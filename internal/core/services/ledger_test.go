package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
	"github.com/ammerola/mfg-erp/internal/core/services"
	"github.com/ammerola/mfg-erp/test/helpers"
	"github.com/ammerola/mfg-erp/test/mocks"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type ledgerMocks struct {
	repo     *mocks.MockInventoryRepository
	tx       *mocks.MockInventoryTx
	cache    *mocks.MockCacheInvalidator
	notifier *mocks.MockReorderNotifier
}

func newLedger(t *testing.T) (*services.LedgerService, ledgerMocks) {
	ctrl := gomock.NewController(t)
	m := ledgerMocks{
		repo:     mocks.NewMockInventoryRepository(ctrl),
		tx:       mocks.NewMockInventoryTx(ctrl),
		cache:    mocks.NewMockCacheInvalidator(ctrl),
		notifier: mocks.NewMockReorderNotifier(ctrl),
	}
	svc := services.NewLedgerService(m.repo, m.cache, m.notifier, helpers.TestLogger()).
		WithClock(func() time.Time { return fixedNow })
	return svc, m
}

// runTx makes WithinTx invoke its callback with the mocked transaction.
func (m ledgerMocks) runTx() {
	m.repo.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(tx ports.InventoryTx) error) error {
			return fn(m.tx)
		})
}

func TestLedgerService_ReadDetail(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(m ledgerMocks)
		expectedError error
		errorContains string
		validate      func(t *testing.T, v *domain.InventoryView)
	}{
		{
			name: "computes_derived_fields",
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().Get(gomock.Any(), int64(7)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
					r.ID = 7
					r.QuantityOnHand = 800
					r.QuantityReserved = 100
					r.UnitCost = decimal.RequireFromString("10.00")
				}), nil)
			},
			validate: func(t *testing.T, v *domain.InventoryView) {
				assert.Equal(t, 700, v.QuantityAvailable)
				assert.True(t, v.TotalValue.Equal(decimal.RequireFromString("8000.00")))
				assert.False(t, v.IsLowStock)
				assert.Equal(t, "Steel Bracket", v.ProductName)
				assert.Equal(t, "Warehouse 1", v.WarehouseName)
			},
		},
		{
			name: "not_found",
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().Get(gomock.Any(), int64(7)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "storage_error",
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().Get(gomock.Any(), int64(7)).
					Return(nil, errors.New("connection refused"))
			},
			errorContains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setupMocks(m)

			view, err := svc.ReadDetail(context.Background(), 7)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.errorContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			default:
				require.NoError(t, err)
				tt.validate(t, view)
			}
		})
	}
}

func TestLedgerService_ReadDetail_Idempotent(t *testing.T) {
	svc, m := newLedger(t)
	entry := helpers.CreateTestEntry()
	m.repo.EXPECT().Get(gomock.Any(), int64(1)).Return(entry, nil).Times(2)

	first, err := svc.ReadDetail(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.ReadDetail(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLedgerService_List(t *testing.T) {
	low := helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
		r.ID = 2
		r.QuantityOnHand = 20
		r.QuantityReserved = 0
	})
	healthy := helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
		r.ID = 3
		r.QuantityOnHand = 45
		r.QuantityReserved = 0
	})
	warehouseID := int64(4)

	tests := []struct {
		name        string
		filter      domain.InventoryFilter
		setupMocks  func(m ledgerMocks)
		expectedIDs []int64
	}{
		{
			name:   "all_records",
			filter: domain.InventoryFilter{},
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().ListAll(gomock.Any()).Return([]*domain.InventoryEntry{low, healthy}, nil)
			},
			expectedIDs: []int64{2, 3},
		},
		{
			name:   "by_warehouse",
			filter: domain.InventoryFilter{WarehouseID: &warehouseID},
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().ListByWarehouse(gomock.Any(), warehouseID).Return([]*domain.InventoryEntry{healthy}, nil)
			},
			expectedIDs: []int64{3},
		},
		{
			name:   "low_stock_only",
			filter: domain.InventoryFilter{LowStockOnly: true},
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().ListAll(gomock.Any()).Return([]*domain.InventoryEntry{low, healthy}, nil)
			},
			expectedIDs: []int64{2},
		},
		{
			name:   "empty",
			filter: domain.InventoryFilter{},
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().ListAll(gomock.Any()).Return(nil, nil)
			},
			expectedIDs: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setupMocks(m)

			views, err := svc.List(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := make([]int64, 0, len(views))
			for _, v := range views {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestLedgerService_LowStock(t *testing.T) {
	svc, m := newLedger(t)
	orphan := helpers.CreateTestEntry(func(r *domain.InventoryRecord) { r.QuantityOnHand = 0; r.QuantityReserved = 0 })
	orphan.Product = nil
	m.repo.EXPECT().ListAll(gomock.Any()).Return([]*domain.InventoryEntry{
		orphan,
		helpers.CreateTestEntry(func(r *domain.InventoryRecord) { r.ID = 9; r.QuantityOnHand = 25; r.QuantityReserved = 0 }),
	}, nil)

	views, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(9), views[0].ID)
}

func TestLedgerService_Adjust(t *testing.T) {
	tests := []struct {
		name          string
		req           domain.AdjustInventory
		setupMocks    func(m ledgerMocks)
		expectedError error
		errorContains string
	}{
		{
			name: "applies_new_state",
			req:  domain.AdjustInventory{QuantityOnHand: 600, QuantityReserved: 100, UnitCost: decimal.RequireFromString("11.00")},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, rec *domain.InventoryRecord) error {
						assert.Equal(t, 600, rec.QuantityOnHand)
						assert.Equal(t, 100, rec.QuantityReserved)
						assert.True(t, rec.UnitCost.Equal(decimal.RequireFromString("11.00")))
						assert.Equal(t, fixedNow, rec.LastStockUpdate)
						return nil
					})
				m.cache.EXPECT().InvalidateInventory(gomock.Any())
				m.repo.EXPECT().Get(gomock.Any(), int64(1)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
					r.QuantityOnHand = 600
					r.QuantityReserved = 100
				}), nil)
			},
		},
		{
			name: "low_stock_result_notifies",
			req:  domain.AdjustInventory{QuantityOnHand: 10, QuantityReserved: 0, UnitCost: decimal.RequireFromString("12.50")},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				m.cache.EXPECT().InvalidateInventory(gomock.Any())
				m.repo.EXPECT().Get(gomock.Any(), int64(1)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
					r.QuantityOnHand = 10
					r.QuantityReserved = 0
				}), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, views ...*domain.InventoryView) (int, error) {
						require.Len(t, views, 1)
						assert.True(t, views[0].IsLowStock)
						return 1, nil
					})
			},
		},
		{
			name: "notify_failure_does_not_fail_adjust",
			req:  domain.AdjustInventory{QuantityOnHand: 10, QuantityReserved: 0, UnitCost: decimal.Zero},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				m.cache.EXPECT().InvalidateInventory(gomock.Any())
				m.repo.EXPECT().Get(gomock.Any(), int64(1)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
					r.QuantityOnHand = 10
					r.QuantityReserved = 0
				}), nil)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(0, errors.New("broker down"))
			},
		},
		{
			name:          "reserved_exceeds_on_hand",
			req:           domain.AdjustInventory{QuantityOnHand: 10, QuantityReserved: 20, UnitCost: decimal.Zero},
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name:          "negative_on_hand",
			req:           domain.AdjustInventory{QuantityOnHand: -1, UnitCost: decimal.Zero},
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name:          "negative_unit_cost",
			req:           domain.AdjustInventory{QuantityOnHand: 1, UnitCost: decimal.RequireFromString("-0.01")},
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name: "record_not_found",
			req:  domain.AdjustInventory{QuantityOnHand: 1, UnitCost: decimal.Zero},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "storage_failure",
			req:  domain.AdjustInventory{QuantityOnHand: 1, UnitCost: decimal.Zero},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("deadlock detected"))
			},
			expectedError: domain.ErrStorageUnavailable,
			errorContains: "deadlock detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setupMocks(m)

			view, err := svc.Adjust(context.Background(), 1, tt.req)

			if tt.expectedError != nil || tt.errorContains != "" {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, view)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.QuantityOnHand, view.QuantityOnHand)
		})
	}
}

func TestLedgerService_Transfer(t *testing.T) {
	source := func() *domain.InventoryRecord {
		return helpers.CreateTestRecord(func(r *domain.InventoryRecord) {
			r.ID = 10
			r.WarehouseID = 1
			r.QuantityOnHand = 500
			r.QuantityReserved = 50
		})
	}
	destination := func() *domain.InventoryRecord {
		return helpers.CreateTestRecord(func(r *domain.InventoryRecord) {
			r.ID = 20
			r.WarehouseID = 2
			r.QuantityOnHand = 30
			r.QuantityReserved = 0
		})
	}
	reload := func(m ledgerMocks) {
		m.cache.EXPECT().InvalidateInventory(gomock.Any())
		m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, id int64) (*domain.InventoryEntry, error) {
				return helpers.CreateTestEntry(func(r *domain.InventoryRecord) { r.ID = id }), nil
			}).Times(2)
	}

	tests := []struct {
		name          string
		req           domain.TransferRequest
		setupMocks    func(m ledgerMocks)
		expectedError error
		validate      func(t *testing.T, res *domain.TransferResult)
	}{
		{
			name: "moves_stock_and_conserves_total",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 50},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				gomock.InOrder(
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil),
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(2)).Return(destination(), nil),
				)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
				reload(m)
			},
			validate: func(t *testing.T, res *domain.TransferResult) {
				assert.Equal(t, 450, res.Source.QuantityOnHand)
				assert.Equal(t, 50, res.Source.QuantityReserved)
				assert.Equal(t, 80, res.Destination.QuantityOnHand)
				assert.Equal(t, 530, res.Source.QuantityOnHand+res.Destination.QuantityOnHand)
				assert.Equal(t, fixedNow, res.Source.LastStockUpdate)
				assert.Equal(t, fixedNow, res.Destination.LastStockUpdate)
				assert.False(t, res.DestinationCreated)
			},
		},
		{
			name: "locks_rows_in_ascending_warehouse_order",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 2, ToWarehouseID: 1, Quantity: 10},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				gomock.InOrder(
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil),
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(2)).Return(destination(), nil),
				)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
				reload(m)
			},
			validate: func(t *testing.T, res *domain.TransferResult) {
				assert.Equal(t, 20, res.Source.QuantityOnHand)
				assert.Equal(t, 510, res.Destination.QuantityOnHand)
			},
		},
		{
			name: "creates_missing_destination",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 3, Quantity: 50},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil)
				gomock.InOrder(
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(3)).Return(nil, nil),
					m.tx.EXPECT().CreateIfMissing(gomock.Any(), gomock.Any()).
						DoAndReturn(func(ctx context.Context, rec *domain.InventoryRecord) (bool, error) {
							assert.Equal(t, int64(3), rec.WarehouseID)
							assert.Equal(t, 0, rec.QuantityOnHand)
							assert.Equal(t, 0, rec.QuantityReserved)
							assert.True(t, rec.UnitCost.Equal(decimal.RequireFromString("12.50")))
							return true, nil
						}),
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(3)).
						Return(&domain.InventoryRecord{ID: 30, ProductID: 1, WarehouseID: 3, UnitCost: decimal.RequireFromString("12.50")}, nil),
				)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
				reload(m)
			},
			validate: func(t *testing.T, res *domain.TransferResult) {
				assert.True(t, res.DestinationCreated)
				assert.Equal(t, int64(30), res.Destination.ID)
				assert.Equal(t, 50, res.Destination.QuantityOnHand)
				assert.Equal(t, 450, res.Source.QuantityOnHand)
			},
		},
		{
			name: "destination_created_by_concurrent_transfer",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 3, Quantity: 50},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil)
				gomock.InOrder(
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(3)).Return(nil, nil),
					m.tx.EXPECT().CreateIfMissing(gomock.Any(), gomock.Any()).Return(false, nil),
					m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(3)).
						Return(helpers.CreateTestRecord(func(r *domain.InventoryRecord) {
							r.ID = 30
							r.WarehouseID = 3
							r.QuantityOnHand = 20
							r.QuantityReserved = 0
						}), nil),
				)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
				reload(m)
			},
			validate: func(t *testing.T, res *domain.TransferResult) {
				assert.False(t, res.DestinationCreated)
				assert.Equal(t, int64(30), res.Destination.ID)
				assert.Equal(t, 70, res.Destination.QuantityOnHand)
				assert.Equal(t, 450, res.Source.QuantityOnHand)
			},
		},
		{
			name: "destination_insert_fails",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 3, Quantity: 50},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil)
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(3)).Return(nil, nil)
				m.tx.EXPECT().CreateIfMissing(gomock.Any(), gomock.Any()).Return(false, errors.New("connection reset"))
			},
			expectedError: domain.ErrStorageUnavailable,
		},
		{
			name: "insufficient_available_stock",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 451},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil)
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(2)).Return(destination(), nil)
			},
			expectedError: domain.ErrInsufficientStock,
		},
		{
			name: "source_missing",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 5},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(nil, nil)
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(2)).Return(destination(), nil)
			},
			expectedError: domain.ErrSourceNotFound,
		},
		{
			name:          "non_positive_quantity",
			req:           domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 0},
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name:          "same_warehouse",
			req:           domain.TransferRequest{ProductID: 1, FromWarehouseID: 2, ToWarehouseID: 2, Quantity: 5},
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name: "destination_write_fails",
			req:  domain.TransferRequest{ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 5},
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(source(), nil)
				m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(2)).Return(destination(), nil)
				gomock.InOrder(
					m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
					m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")),
				)
			},
			expectedError: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setupMocks(m)

			res, err := svc.Transfer(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			tt.validate(t, res)
		})
	}
}

func TestLedgerService_Transfer_InsufficientLeavesRecordsUnchanged(t *testing.T) {
	svc, m := newLedger(t)
	src := helpers.CreateTestRecord(func(r *domain.InventoryRecord) { r.WarehouseID = 1 })
	dst := helpers.CreateTestRecord(func(r *domain.InventoryRecord) { r.ID = 2; r.WarehouseID = 2; r.QuantityOnHand = 30; r.QuantityReserved = 0 })
	srcBefore, dstBefore := *src, *dst

	m.runTx()
	m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(1)).Return(src, nil)
	m.tx.EXPECT().FindByProductAndWarehouseForUpdate(gomock.Any(), int64(1), int64(2)).Return(dst, nil)

	_, err := svc.Transfer(context.Background(), domain.TransferRequest{
		ProductID: 1, FromWarehouseID: 1, ToWarehouseID: 2, Quantity: 1000,
	})

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, srcBefore, *src)
	assert.Equal(t, dstBefore, *dst)
}

func TestLedgerService_RecordCount(t *testing.T) {
	tests := []struct {
		name          string
		counted       int
		setupMocks    func(m ledgerMocks)
		expectedError error
	}{
		{
			name:    "sets_on_hand_and_clamps_reserved",
			counted: 40,
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
				m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, rec *domain.InventoryRecord) error {
						assert.Equal(t, 40, rec.QuantityOnHand)
						assert.Equal(t, 40, rec.QuantityReserved)
						require.NotNil(t, rec.LastCountDate)
						assert.Equal(t, fixedNow, *rec.LastCountDate)
						return nil
					})
				m.cache.EXPECT().InvalidateInventory(gomock.Any())
				m.repo.EXPECT().Get(gomock.Any(), int64(1)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
					r.QuantityOnHand = 40
					r.QuantityReserved = 40
				}), nil)
			},
		},
		{
			name:          "negative_count",
			counted:       -5,
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name:    "unknown_record",
			counted: 5,
			setupMocks: func(m ledgerMocks) {
				m.runTx()
				m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setupMocks(m)

			_, err := svc.RecordCount(context.Background(), 1, tt.counted)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLedgerService_Track(t *testing.T) {
	tests := []struct {
		name          string
		req           domain.CreateInventory
		setupMocks    func(m ledgerMocks)
		expectedError error
	}{
		{
			name: "creates_record",
			req:  domain.CreateInventory{ProductID: 1, WarehouseID: 2, QuantityOnHand: 100, UnitCost: decimal.RequireFromString("4.00")},
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, rec *domain.InventoryRecord) error {
						assert.Equal(t, fixedNow, rec.LastStockUpdate)
						rec.ID = 42
						return nil
					})
				m.cache.EXPECT().InvalidateInventory(gomock.Any())
				m.repo.EXPECT().Get(gomock.Any(), int64(42)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
					r.ID = 42
					r.WarehouseID = 2
					r.QuantityOnHand = 100
					r.QuantityReserved = 0
				}), nil)
			},
		},
		{
			name: "duplicate_pair",
			req:  domain.CreateInventory{ProductID: 1, WarehouseID: 2, UnitCost: decimal.Zero},
			setupMocks: func(m ledgerMocks) {
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateInventory)
			},
			expectedError: domain.ErrDuplicateInventory,
		},
		{
			name:          "missing_product",
			req:           domain.CreateInventory{WarehouseID: 2, UnitCost: decimal.Zero},
			setupMocks:    func(m ledgerMocks) {},
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newLedger(t)
			tt.setupMocks(m)

			view, err := svc.Track(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(42), view.ID)
		})
	}
}

func TestLedgerService_ReloadFailureKeepsCommittedWrite(t *testing.T) {
	reloadFails := func(m ledgerMocks, id int64) {
		m.cache.EXPECT().InvalidateInventory(gomock.Any())
		m.repo.EXPECT().Get(gomock.Any(), id).Return(nil, errors.New("connection reset"))
	}

	t.Run("adjust", func(t *testing.T) {
		svc, m := newLedger(t)
		m.runTx()
		m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
		m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		reloadFails(m, 1)

		view, err := svc.Adjust(context.Background(), 1, domain.AdjustInventory{
			QuantityOnHand: 300, QuantityReserved: 30, UnitCost: decimal.RequireFromString("11.00"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), view.ID)
		assert.Equal(t, 300, view.QuantityOnHand)
		assert.Equal(t, 270, view.QuantityAvailable)
		assert.True(t, view.TotalValue.Equal(decimal.RequireFromString("3300")))
	})

	t.Run("record_count", func(t *testing.T) {
		svc, m := newLedger(t)
		m.runTx()
		m.tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
		m.tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		reloadFails(m, 1)

		view, err := svc.RecordCount(context.Background(), 1, 480)

		require.NoError(t, err)
		assert.Equal(t, 480, view.QuantityOnHand)
		require.NotNil(t, view.LastCountDate)
	})

	t.Run("track", func(t *testing.T) {
		svc, m := newLedger(t)
		m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, rec *domain.InventoryRecord) error {
				rec.ID = 42
				return nil
			})
		reloadFails(m, 42)

		view, err := svc.Track(context.Background(), domain.CreateInventory{
			ProductID: 1, WarehouseID: 2, QuantityOnHand: 100, UnitCost: decimal.RequireFromString("4.00"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), view.ID)
		assert.Equal(t, 100, view.QuantityOnHand)
	})
}

func TestLedgerService_WithoutCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockInventoryRepository(ctrl)
	tx := mocks.NewMockInventoryTx(ctrl)
	svc := services.NewLedgerService(repo, nil, nil, helpers.TestLogger())

	repo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(tx ports.InventoryTx) error) error { return fn(tx) })
	tx.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(helpers.CreateTestRecord(), nil)
	tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().Get(gomock.Any(), int64(1)).Return(helpers.CreateTestEntry(func(r *domain.InventoryRecord) {
		r.QuantityOnHand = 1
		r.QuantityReserved = 0
	}), nil)

	view, err := svc.Adjust(context.Background(), 1, domain.AdjustInventory{QuantityOnHand: 1, UnitCost: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, view.IsLowStock)
}
