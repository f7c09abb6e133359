package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

// Period selects the reporting window.
type Period string

// Reporting periods.
const (
	PeriodMonthly Period = "monthly"
	Period7Days   Period = "7days"
	Period30Days  Period = "30days"
)

// Report summarizes the user's transactions for a period, grouped by type
// and category.
func (m *Manager) Report(ctx context.Context, userID int64, period Period) (string, error) {
	now := m.now()

	var filter service.TransactionFilter
	var title string
	switch period {
	case Period7Days:
		start := now.AddDate(0, 0, -7)
		filter.StartDate = &start
		title = "Ringkasan 7 Hari Terakhir"
	case Period30Days:
		start := now.AddDate(0, 0, -30)
		filter.StartDate = &start
		title = "Ringkasan 30 Hari Terakhir"
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		filter.StartDate = &start
		title = fmt.Sprintf("Laporan Keuangan %s %d", monthName(now.Month()), now.Year())
	}

	txns, err := m.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return "", fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(txns) == 0 {
		return "Belum ada transaksi untuk periode ini.", nil
	}

	incomes, incomeTotal := sumByCategory(txns, model.TypeIncome)
	expenses, expenseTotal := sumByCategory(txns, model.TypeExpense)

	out := "📊 " + title + "\n"
	if len(incomes) > 0 {
		out += "\n💰 Pemasukan:\n"
		for _, line := range incomes {
			out += fmt.Sprintf("- %s: Rp %s\n", line.category, FormatRupiah(line.total))
		}
		out += fmt.Sprintf("Total: Rp %s\n", FormatRupiah(incomeTotal))
	}
	if len(expenses) > 0 {
		out += "\n💸 Pengeluaran:\n"
		for _, line := range expenses {
			out += fmt.Sprintf("- %s: Rp %s\n", line.category, FormatRupiah(line.total))
		}
		out += fmt.Sprintf("Total: Rp %s\n", FormatRupiah(expenseTotal))
	}

	return out, nil
}

type categoryTotal struct {
	category model.Category
	total    float64
}

// sumByCategory groups amounts by category in the fixed category order.
func sumByCategory(txns []model.Transaction, txType model.TransactionType) ([]categoryTotal, float64) {
	byCategory := make(map[model.Category]float64)
	var total float64
	for _, t := range txns {
		if t.Type != txType {
			continue
		}
		byCategory[t.Category] += t.Amount
		total += t.Amount
	}

	var lines []categoryTotal
	for _, c := range model.Categories() {
		if amount, ok := byCategory[c]; ok {
			lines = append(lines, categoryTotal{category: c, total: amount})
		}
	}
	return lines, total
}

func monthName(m time.Month) string {
	names := [...]string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
	return names[m-1]
}
