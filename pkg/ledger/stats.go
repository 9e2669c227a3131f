package ledger

import (
	"context"
	"fmt"

	"github.com/benderoz/BUH-uchet/pkg/db"
)

// Read-side aggregation over the expense table. All sums coalesce the absence
// of rows to zero.

// SumByPeriod returns the chat total for a period.
func (m *Manager) SumByPeriod(ctx context.Context, chatID int64, period Period) (float64, error) {
	from, to := m.clock.Bounds(period)

	total, err := m.cr.SumExpenses(ctx, chatID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return total, nil
}

// TotalAllTime returns the all-time chat total.
func (m *Manager) TotalAllTime(ctx context.Context, chatID int64) (float64, error) {
	return m.SumByPeriod(ctx, chatID, PeriodAll)
}

// SumByUser returns per-user chat totals for a period. Only users with at
// least one expense in the window are present.
func (m *Manager) SumByUser(ctx context.Context, chatID int64, period Period) (map[int64]float64, error) {
	from, to := m.clock.Bounds(period)

	rows, err := m.cr.SumExpensesByUser(ctx, chatID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by user: %w", err)
	}

	totals := make(map[int64]float64, len(rows))
	for _, r := range rows {
		totals[r.TgUserID] = r.Total
	}

	return totals, nil
}

// TopCategories returns up to limit categories of a chat for a period, summed
// amount descending, ties broken by category name ascending.
func (m *Manager) TopCategories(ctx context.Context, chatID int64, period Period, limit int) ([]db.CategoryTotal, error) {
	from, to := m.clock.Bounds(period)

	rows, err := m.cr.SumExpensesByCategory(ctx, chatID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}

	return rows, nil
}
