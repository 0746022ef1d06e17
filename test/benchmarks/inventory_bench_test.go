package benchmarks

import (
	"io"
	"testing"
	"time"

	"github.com/ammerola/mfg-erp/internal/adapters/spreadsheet"
	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/workers"
)

func BenchmarkInventoryView(b *testing.B) {
	entries := createEntries(1000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = domain.NewInventoryView(entries[i%len(entries)])
	}
}

func BenchmarkLowStockAlerts(b *testing.B) {
	views := createViews(1000)
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var alerts []domain.LowStockAlert
		for _, v := range views {
			if v.IsLowStock {
				alerts = append(alerts, domain.NewLowStockAlert(v, now))
			}
		}
		_ = alerts
	}
}

func BenchmarkWriteInventory(b *testing.B) {
	for _, size := range []struct {
		name string
		n    int
	}{
		{"100", 100},
		{"1000", 1000},
	} {
		views := createViews(size.n)
		b.Run(size.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := spreadsheet.WriteInventory(io.Discard, views); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReadStockCounts(b *testing.B) {
	data := createStockCountWorkbook(500)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		counts, _, err := spreadsheet.ReadStockCounts(data)
		if err != nil {
			b.Fatal(err)
		}
		if len(counts) != 500 {
			b.Fatalf("read %d counts, want 500", len(counts))
		}
	}
}

func BenchmarkParseInvoiceLines(b *testing.B) {
	lines := createInvoiceText(200)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if items := workers.ParseInvoiceLines(lines); len(items) != 200 {
			b.Fatalf("parsed %d lines, want 200", len(items))
		}
	}
}

func BenchmarkValidateQuantities(b *testing.B) {
	views := createViews(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v := views[i%len(views)]
		_ = domain.ValidateQuantities(v.QuantityOnHand, v.QuantityReserved, v.UnitCost)
	}
}
