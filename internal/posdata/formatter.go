package posdata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/posinsight/posinsight/pkg/models"
)

type productAgg struct {
	sku     string
	name    string
	count   int
	qty     int
	revenue float64
}

type categoryAgg struct {
	name    string
	count   int
	revenue float64
}

// FormatForAnalysis renders an ordered transaction list into the compact
// textual digest fed to the completion model: totals, top products, and
// category/payment/hourly breakdowns.
//
// The digest is deterministic for a given input: products are ranked by
// revenue descending with ties broken by first appearance, categories and
// payment methods appear in first-seen order, and hours ascend 0–23. An
// empty input degrades to zero-valued aggregates with no top-products list.
func FormatForAnalysis(txns []models.Transaction) string {
	var b strings.Builder
	b.WriteString("POS Transaction Data for Analysis:\n\n")
	fmt.Fprintf(&b, "Total Transactions: %d\n", len(txns))
	if len(txns) > 0 {
		fmt.Fprintf(&b, "Date Range: %s to %s\n\n",
			txns[0].Timestamp.Format(time.RFC3339),
			txns[len(txns)-1].Timestamp.Format(time.RFC3339))
	} else {
		b.WriteString("Date Range: n/a\n\n")
	}

	var totalRevenue, totalTax, totalDiscount float64
	products := make(map[string]*productAgg)
	var productOrder []string
	categories := make(map[string]*categoryAgg)
	var categoryOrder []string
	payments := make(map[models.PaymentMethod]float64)
	var paymentOrder []models.PaymentMethod
	var hourly [24]float64

	for _, txn := range txns {
		totalRevenue += txn.Amount
		totalTax += txn.TaxAmount
		totalDiscount += txn.DiscountAmount

		for _, item := range txn.Items {
			p, ok := products[item.SKU]
			if !ok {
				p = &productAgg{sku: item.SKU, name: item.Name}
				products[item.SKU] = p
				productOrder = append(productOrder, item.SKU)
			}
			p.count++
			p.qty += item.Quantity
			p.revenue += item.TotalPrice

			c, ok := categories[item.Category]
			if !ok {
				c = &categoryAgg{name: item.Category}
				categories[item.Category] = c
				categoryOrder = append(categoryOrder, item.Category)
			}
			c.count++
			c.revenue += item.TotalPrice
		}

		if _, ok := payments[txn.PaymentMethod]; !ok {
			paymentOrder = append(paymentOrder, txn.PaymentMethod)
		}
		payments[txn.PaymentMethod] += txn.Amount
		hourly[txn.Timestamp.Hour()] += txn.Amount
	}

	avg := 0.0
	if len(txns) > 0 {
		avg = totalRevenue / float64(len(txns))
	}
	fmt.Fprintf(&b, "Total Revenue: $%.2f\n", totalRevenue)
	fmt.Fprintf(&b, "Total Tax: $%.2f\n", totalTax)
	fmt.Fprintf(&b, "Total Discounts: $%.2f\n", totalDiscount)
	fmt.Fprintf(&b, "Average Transaction: $%.2f\n\n", avg)

	if len(productOrder) > 0 {
		b.WriteString("Top 5 Products by Revenue:\n")
		ranked := make([]*productAgg, 0, len(productOrder))
		for _, sku := range productOrder {
			ranked = append(ranked, products[sku])
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].revenue > ranked[j].revenue
		})
		if len(ranked) > 5 {
			ranked = ranked[:5]
		}
		for _, p := range ranked {
			fmt.Fprintf(&b, "- %s: $%.2f (%d units, %d transactions)\n",
				p.name, p.revenue, p.qty, p.count)
		}
		b.WriteString("\n")
	}

	b.WriteString("Category Breakdown:\n")
	for _, name := range categoryOrder {
		c := categories[name]
		fmt.Fprintf(&b, "- %s: $%.2f (%d items)\n", c.name, c.revenue, c.count)
	}

	b.WriteString("\nPayment Methods:\n")
	for _, method := range paymentOrder {
		fmt.Fprintf(&b, "- %s: $%.2f\n", method, payments[method])
	}

	b.WriteString("\nHourly Performance:\n")
	for hour := 0; hour < 24; hour++ {
		if hourly[hour] == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %d:00: $%.2f\n", hour, hourly[hour])
	}

	return b.String()
}
