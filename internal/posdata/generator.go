package posdata

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/posinsight/posinsight/pkg/models"
)

const taxRate = 0.08

// round2 rounds a monetary value to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateTransactions produces count synthetic transactions with timestamps
// uniformly distributed in [start, end], sorted ascending by timestamp.
//
// Each transaction has 1–4 line items drawn from the catalog with quantities
// 1–3, an 8% tax on the pre-tax subtotal, and a 20% chance of a 5–15%
// discount. Amount = subtotal + tax − discount, each rounded to cents.
func GenerateTransactions(start, end time.Time, count int) []models.Transaction {
	if count <= 0 {
		return []models.Transaction{}
	}
	span := end.Sub(start)
	if span < 0 {
		span = 0
	}

	txns := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		ts := start
		if span > 0 {
			ts = start.Add(time.Duration(rand.Int63n(int64(span))))
		}

		itemCount := rand.Intn(4) + 1
		items := make([]models.LineItem, 0, itemCount)
		var subtotal float64
		for j := 0; j < itemCount; j++ {
			p := Catalog[rand.Intn(len(Catalog))]
			qty := rand.Intn(3) + 1
			total := round2(p.UnitPrice * float64(qty))
			items = append(items, models.LineItem{
				SKU:        p.SKU,
				Name:       p.Name,
				Category:   p.Category,
				Quantity:   qty,
				UnitPrice:  p.UnitPrice,
				TotalPrice: total,
			})
			subtotal += total
		}

		tax := round2(subtotal * taxRate)

		var discount float64
		if rand.Float64() < 0.2 {
			// 5–15% of the subtotal
			discount = round2(subtotal * (0.05 + rand.Float64()*0.1))
		}

		txn := models.Transaction{
			ID:             fmt.Sprintf("TXN-%d-%d", time.Now().UnixMilli(), i),
			Timestamp:      ts,
			Amount:         round2(subtotal + tax - discount),
			TaxAmount:      tax,
			DiscountAmount: discount,
			PaymentMethod:  paymentMethods[rand.Intn(len(paymentMethods))],
			Items:          items,
		}
		if rand.Float64() < 0.7 {
			txn.CustomerID = fmt.Sprintf("CUST-%d", rand.Intn(1000))
		}
		if rand.Float64() < 0.1 {
			txn.Notes = "Regular customer"
		}
		txns = append(txns, txn)
	}

	sort.Slice(txns, func(i, j int) bool {
		return txns[i].Timestamp.Before(txns[j].Timestamp)
	})
	return txns
}
