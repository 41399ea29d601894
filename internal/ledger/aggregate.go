package ledger

import (
	"context"
	"fmt"
	"time"
)

const DefaultSeriesMonths = 6

// Totals sums all income and expense records of the handle's owner. An
// empty ledger yields (0, 0).
func (h Handle) Totals(ctx context.Context) (Totals, error) {
	var totals Totals

	incomes, err := h.storage.ListTransactions(ctx, h.ownerId, Income)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to list income transactions: %w", err)
	}
	for _, t := range incomes {
		totals.Income += t.Amount
	}

	expenses, err := h.storage.ListTransactions(ctx, h.ownerId, Expense)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to list expense transactions: %w", err)
	}
	for _, t := range expenses {
		totals.Expense += t.Amount
	}

	return totals, nil
}

// MonthlySeries returns the trailing series ending in the current month.
func (h Handle) MonthlySeries(ctx context.Context, months int) ([]MonthBucket, error) {
	return h.MonthlySeriesAsOf(ctx, months, time.Now().UTC())
}

// MonthlySeriesAsOf buckets the owner's records into the `months`
// calendar months ending with the month of asOf, oldest first. Months
// are stepped with calendar arithmetic on the first of the month; a
// record lands in a bucket when its year and month match, whatever the
// day.
func (h Handle) MonthlySeriesAsOf(ctx context.Context, months int, asOf time.Time) ([]MonthBucket, error) {
	if months <= 0 {
		months = DefaultSeriesMonths
	}

	firstOfMonth := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]MonthBucket, 0, months)
	index := make(map[int]int, months)
	for i := months - 1; i >= 0; i-- {
		m := firstOfMonth.AddDate(0, -i, 0)
		index[m.Year()*12+int(m.Month())] = len(buckets)
		buckets = append(buckets, MonthBucket{
			Label: m.Format("Jan 2006"),
			Year:  m.Year(),
			Month: m.Month(),
		})
	}

	incomes, err := h.storage.ListTransactions(ctx, h.ownerId, Income)
	if err != nil {
		return nil, fmt.Errorf("failed to list income transactions: %w", err)
	}
	for _, t := range incomes {
		if i, ok := index[t.Date.Year()*12+int(t.Date.Month())]; ok {
			buckets[i].Income += t.Amount
		}
	}

	expenses, err := h.storage.ListTransactions(ctx, h.ownerId, Expense)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense transactions: %w", err)
	}
	for _, t := range expenses {
		if i, ok := index[t.Date.Year()*12+int(t.Date.Month())]; ok {
			buckets[i].Expense += t.Amount
		}
	}

	return buckets, nil
}
