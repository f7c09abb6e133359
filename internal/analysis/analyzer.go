// Package analysis derives spending-pattern observations and a health
// score from the ledger. Output strings feed the oracle for prose
// insights, so they stay structured and factual.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

const (
	nightHour        = 19
	nightShareLimit  = 40.0
	anomalyFactor    = 3.0
	impulseHour      = 22
	impulseMinAmount = 50000.0
	lowSavingsRate   = 10.0
)

// Indonesian weekday names, indexed by time.Weekday.
var weekdayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// Analyzer computes spending patterns and health scores for a user.
type Analyzer struct {
	store  service.Storage
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyzer creates an analyzer over the given store.
func NewAnalyzer(store service.Storage, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AnalyzePatterns builds honest observations about this month's
// spending. It returns an empty string when there is nothing to say.
func (a *Analyzer) AnalyzePatterns(ctx context.Context, userID int64) (string, error) {
	now := a.now()
	txns, err := a.monthTransactions(ctx, userID, now)
	if err != nil {
		return "", err
	}
	if len(txns) == 0 {
		return "", nil
	}

	expenses := filterExpenses(txns)
	if len(expenses) == 0 {
		return "Belum ada data pengeluaran bulan ini untuk dianalisis.", nil
	}

	var b strings.Builder
	b.WriteString("🧠 *AI SMART INSIGHTS*\n")

	total := sumAmounts(expenses)

	// Night spending share.
	var nightTotal float64
	for _, t := range expenses {
		if t.Date.Hour() >= nightHour {
			nightTotal += t.Amount
		}
	}
	if share := nightTotal / total * 100; share > nightShareLimit {
		fmt.Fprintf(&b, "• *Peringatan Malam*: %.0f%% uangmu keluar setelah jam 7 malam. Hati-hati lapar mata!\n", share)
	}

	// Heaviest weekday.
	byDay := make(map[time.Weekday]float64)
	for _, t := range expenses {
		byDay[t.Date.Weekday()] += t.Amount
	}
	fmt.Fprintf(&b, "• *Hari Boros*: Kamu paling banyak belanja di hari %s.\n", weekdayNames[heaviestDay(byDay)])

	// Single transactions far above the mean.
	mean := total / float64(len(expenses))
	for _, t := range expenses {
		if t.Amount > mean*anomalyFactor {
			b.WriteString("• *Deteksi Anomali*: Ada transaksi besar yang di atas rata-rata. Perlu dikontrol?\n")
			break
		}
	}

	// Daily average over the trailing week.
	weekAgo := now.AddDate(0, 0, -7)
	var weekTotal float64
	var hasWeekData bool
	for _, t := range txns {
		if !t.Date.Before(weekAgo) {
			hasWeekData = true
			if t.Type == model.TypeExpense {
				weekTotal += t.Amount
			}
		}
	}
	if hasWeekData {
		fmt.Fprintf(&b, "• *Tren*: Rata-rata pengeluaran harianmu seminggu terakhir adalah Rp%s.\n",
			budget.FormatRupiah(weekTotal/7))
	}

	// Savings rate against the latest known income.
	income, err := a.store.GetLatestIncome(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load income: %w", err)
	}
	if income != nil {
		rate := (income.Amount - total) / income.Amount * 100
		if rate < lowSavingsRate {
			b.WriteString("• *Saran*: Tabunganmu bulan ini di bawah 10%. Coba kurangi kategori non-primer.\n")
		} else {
			fmt.Fprintf(&b, "• *Saran*: Kamu sudah menabung %.0f%% gaji. Pertahankan!\n", rate)
		}
	}

	return b.String(), nil
}

// HealthScore computes a transparent 0-100 financial health score.
// Without a known income the score is a neutral 50.
func (a *Analyzer) HealthScore(ctx context.Context, userID int64) (int, error) {
	now := a.now()

	income, err := a.store.GetLatestIncome(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load income: %w", err)
	}
	if income == nil {
		return 50, nil
	}

	txns, err := a.monthTransactions(ctx, userID, now)
	if err != nil {
		return 0, err
	}

	entries, err := a.store.GetBudgetEntries(ctx, userID, int(now.Month()), now.Year())
	if err != nil {
		return 0, fmt.Errorf("failed to load budgets: %w", err)
	}

	score := 100

	for _, e := range entries {
		if e.Usage > e.Limit {
			score -= 10
		}
	}

	for _, t := range txns {
		if t.Date.Hour() >= impulseHour && t.Amount > impulseMinAmount {
			score -= 5
		}
	}

	if total := sumAmounts(filterExpenses(txns)); total > income.Amount {
		score -= 20
	}

	if score < 0 {
		score = 0
	}
	return score, nil
}

func (a *Analyzer) monthTransactions(ctx context.Context, userID int64, now time.Time) ([]model.Transaction, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	txns, err := a.store.ListTransactions(ctx, userID, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}

func filterExpenses(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.Type == model.TypeExpense {
			out = append(out, t)
		}
	}
	return out
}

func sumAmounts(txns []model.Transaction) float64 {
	var total float64
	for _, t := range txns {
		total += t.Amount
	}
	return total
}

func heaviestDay(byDay map[time.Weekday]float64) time.Weekday {
	best := time.Sunday
	bestTotal := -1.0
	for day := time.Sunday; day <= time.Saturday; day++ {
		if total, ok := byDay[day]; ok && total > bestTotal {
			best = day
			bestTotal = total
		}
	}
	return best
}
