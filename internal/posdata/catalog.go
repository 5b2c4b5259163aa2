// Package posdata provides the demo transaction source: a synthetic
// generator over a fixed product catalog, plus the digest formatter and
// aggregate statistics used to feed transaction data into prompts.
//
// The generator stands in for a real transactional database. It makes no
// attempt to model real statistical distributions; the only hard guarantee
// is the monetary invariant amount = subtotal + tax − discount.
package posdata

import "github.com/posinsight/posinsight/pkg/models"

// Product is a catalog entry the generator draws line items from.
type Product struct {
	SKU       string
	Name      string
	Category  string
	UnitPrice float64
}

// Catalog is the fixed demo product catalog, loaded once at process start
// and never mutated.
var Catalog = []Product{
	{SKU: "SKU-001", Name: "Cappuccino", Category: "Beverages", UnitPrice: 4.50},
	{SKU: "SKU-002", Name: "Espresso Shot", Category: "Beverages", UnitPrice: 2.75},
	{SKU: "SKU-003", Name: "Croissant", Category: "Pastries", UnitPrice: 3.50},
	{SKU: "SKU-004", Name: "Blueberry Muffin", Category: "Pastries", UnitPrice: 4.00},
	{SKU: "SKU-005", Name: "Caesar Salad", Category: "Food", UnitPrice: 9.99},
	{SKU: "SKU-006", Name: "Turkey Sandwich", Category: "Food", UnitPrice: 10.50},
	{SKU: "SKU-007", Name: "Iced Tea", Category: "Beverages", UnitPrice: 3.00},
	{SKU: "SKU-008", Name: "Chocolate Chip Cookie", Category: "Pastries", UnitPrice: 2.50},
	{SKU: "SKU-009", Name: "Chicken Wrap", Category: "Food", UnitPrice: 8.99},
	{SKU: "SKU-010", Name: "Matcha Latte", Category: "Beverages", UnitPrice: 5.50},
}

// ProductBySKU looks up a catalog product. The second return value reports
// whether the SKU exists.
func ProductBySKU(sku string) (Product, bool) {
	for _, p := range Catalog {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}

var paymentMethods = []models.PaymentMethod{
	models.PaymentCash,
	models.PaymentCard,
	models.PaymentMobile,
	models.PaymentCheck,
}
