package posdata_test

import (
	"math"
	"testing"
	"time"

	"github.com/posinsight/posinsight/internal/posdata"
	"github.com/posinsight/posinsight/pkg/models"
)

func TestCategoryBreakdown(t *testing.T) {
	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	txns := []models.Transaction{
		txnWith(ts, models.PaymentCard, 12.96,
			models.LineItem{SKU: "SKU-001", Name: "Cappuccino", Category: "Beverages", Quantity: 2, UnitPrice: 4.50, TotalPrice: 9.00},
			models.LineItem{SKU: "SKU-003", Name: "Croissant", Category: "Pastries", Quantity: 1, UnitPrice: 3.50, TotalPrice: 3.50}),
		txnWith(ts.Add(time.Hour), models.PaymentCash, 4.86,
			models.LineItem{SKU: "SKU-001", Name: "Cappuccino", Category: "Beverages", Quantity: 1, UnitPrice: 4.50, TotalPrice: 4.50}),
	}

	stats := posdata.CategoryBreakdown(txns)

	bev, ok := stats["Beverages"]
	if !ok {
		t.Fatal("CategoryBreakdown() missing Beverages category")
	}
	if bev.Revenue != 13.50 || bev.Quantity != 3 || bev.Transactions != 2 {
		t.Errorf("Beverages = %+v, want revenue 13.50, quantity 3, transactions 2", bev)
	}
	if item := bev.Items["SKU-001"]; item.Name != "Cappuccino" || item.Quantity != 3 || item.Revenue != 13.50 {
		t.Errorf("Beverages item SKU-001 = %+v", item)
	}

	pas, ok := stats["Pastries"]
	if !ok {
		t.Fatal("CategoryBreakdown() missing Pastries category")
	}
	if pas.Revenue != 3.50 || pas.Quantity != 1 || pas.Transactions != 1 {
		t.Errorf("Pastries = %+v, want revenue 3.50, quantity 1, transactions 1", pas)
	}
}

func TestCategoryBreakdown_Empty(t *testing.T) {
	if stats := posdata.CategoryBreakdown(nil); len(stats) != 0 {
		t.Errorf("CategoryBreakdown(nil) = %v, want empty map", stats)
	}
}

func TestComparePeriods(t *testing.T) {
	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	item := models.LineItem{SKU: "SKU-001", Name: "Cappuccino", Category: "Beverages", Quantity: 1, UnitPrice: 4.50, TotalPrice: 4.50}

	period1 := []models.Transaction{
		txnWith(ts, models.PaymentCard, 100, item),
		txnWith(ts, models.PaymentCash, 100, item),
	}
	period2 := []models.Transaction{
		txnWith(ts.AddDate(0, 0, 7), models.PaymentCard, 300, item),
	}

	cmp := posdata.ComparePeriods(period1, period2)

	if cmp.Period1.Revenue != 200 || cmp.Period1.Transactions != 2 || cmp.Period1.AvgTransaction != 100 {
		t.Errorf("Period1 = %+v", cmp.Period1)
	}
	if cmp.Period2.Revenue != 300 || cmp.Period2.Transactions != 1 || cmp.Period2.AvgTransaction != 300 {
		t.Errorf("Period2 = %+v", cmp.Period2)
	}
	if math.Abs(cmp.RevenueChange-50) > 0.001 {
		t.Errorf("RevenueChange = %.2f, want 50", cmp.RevenueChange)
	}
	if math.Abs(cmp.TransactionChange-(-50)) > 0.001 {
		t.Errorf("TransactionChange = %.2f, want -50", cmp.TransactionChange)
	}
	if math.Abs(cmp.AvgTransactionChange-200) > 0.001 {
		t.Errorf("AvgTransactionChange = %.2f, want 200", cmp.AvgTransactionChange)
	}
}

func TestComparePeriods_EmptyBaseline(t *testing.T) {
	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	item := models.LineItem{SKU: "SKU-001", Name: "Cappuccino", Category: "Beverages", Quantity: 1, UnitPrice: 4.50, TotalPrice: 4.50}

	cmp := posdata.ComparePeriods(nil, []models.Transaction{txnWith(ts, models.PaymentCard, 50, item)})

	if cmp.RevenueChange != 0 || cmp.TransactionChange != 0 || cmp.AvgTransactionChange != 0 {
		t.Errorf("deltas with empty baseline = %+v, want all zero", cmp)
	}
}
