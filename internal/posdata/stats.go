package posdata

import "github.com/posinsight/posinsight/pkg/models"

// CategoryBreakdown computes per-category statistics over a transaction set.
// The report workflow stores the result on its context alongside the raw
// transactions.
func CategoryBreakdown(txns []models.Transaction) map[string]models.CategoryStats {
	stats := make(map[string]models.CategoryStats)
	for _, txn := range txns {
		for _, item := range txn.Items {
			c := stats[item.Category]
			if c.Items == nil {
				c.Items = make(map[string]models.ItemStats)
			}
			c.Revenue += item.TotalPrice
			c.Quantity += item.Quantity
			c.Transactions++

			is := c.Items[item.SKU]
			is.Name = item.Name
			is.Quantity += item.Quantity
			is.Revenue += item.TotalPrice
			c.Items[item.SKU] = is

			stats[item.Category] = c
		}
	}
	return stats
}

// PeriodStats summarizes one period for comparison.
type PeriodStats struct {
	Revenue        float64 `json:"revenue"`
	Transactions   int     `json:"transactions"`
	AvgTransaction float64 `json:"avgTransaction"`
	Items          int     `json:"items"`
}

// PeriodComparison reports percent deltas between two periods. Deltas are
// zero when the first period has no baseline to divide by.
type PeriodComparison struct {
	Period1              PeriodStats `json:"period1"`
	Period2              PeriodStats `json:"period2"`
	RevenueChange        float64     `json:"revenueChange"`
	TransactionChange    float64     `json:"transactionChange"`
	AvgTransactionChange float64     `json:"avgTransactionChange"`
}

func summarize(txns []models.Transaction) PeriodStats {
	s := PeriodStats{Transactions: len(txns)}
	for _, txn := range txns {
		s.Revenue += txn.Amount
		s.Items += len(txn.Items)
	}
	if s.Transactions > 0 {
		s.AvgTransaction = s.Revenue / float64(s.Transactions)
	}
	return s
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// ComparePeriods compares two transaction sets, used by comparative reports.
func ComparePeriods(period1, period2 []models.Transaction) PeriodComparison {
	s1 := summarize(period1)
	s2 := summarize(period2)
	return PeriodComparison{
		Period1:              s1,
		Period2:              s2,
		RevenueChange:        pctChange(s1.Revenue, s2.Revenue),
		TransactionChange:    pctChange(float64(s1.Transactions), float64(s2.Transactions)),
		AvgTransactionChange: pctChange(s1.AvgTransaction, s2.AvgTransaction),
	}
}
