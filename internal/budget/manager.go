// Package budget tracks per-category monthly limits, usage, alerts and
// pace projections.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

// Alert thresholds as fractions of the monthly limit.
const (
	warningThreshold = 0.8
	limitThreshold   = 1.0

	// burnRateTolerance is how many percentage points ahead of the
	// expected linear pace spending may run before we flag it.
	burnRateTolerance = 10.0

	// burnRateDaysInMonth is a deliberate approximation: every month is
	// treated as 30 days, so 28/29/31-day months run slightly off pace.
	burnRateDaysInMonth = 30.0
)

// Manager is the budget ledger. All usage mutation goes through Commit
// and Reverse; the store performs the atomic update.
type Manager struct {
	store  service.Storage
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a budget manager over the given store.
func NewManager(store service.Storage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Commit appends the transaction and, for expenses, adds its amount to
// the matching budget entry's usage. It returns the threshold alert for
// the category, or "" when spending is still comfortable.
func (m *Manager) Commit(ctx context.Context, txn model.Transaction) (string, error) {
	if txn.Date.IsZero() {
		txn.Date = m.now()
	}
	if _, err := m.store.AppendTransaction(ctx, txn); err != nil {
		return "", fmt.Errorf("failed to append transaction: %w", err)
	}

	if txn.Type == model.TypeExpense {
		month, year := monthYear(txn.Date)
		if err := m.store.CommitUsage(ctx, txn.UserID, txn.Category, txn.Amount, month, year); err != nil {
			return "", fmt.Errorf("failed to commit usage: %w", err)
		}
	}

	m.logger.Debug("transaction committed",
		"user_id", txn.UserID,
		"category", txn.Category,
		"amount", txn.Amount,
		"type", txn.Type)

	return m.Status(ctx, txn.UserID, txn.Category)
}

// Reverse removes a committed transaction and subtracts its exact amount
// from the budget entry of the transaction's own month. This is a direct
// O(1) reversal of the prior commit, not a recomputation.
func (m *Manager) Reverse(ctx context.Context, txn model.Transaction) error {
	deleted, err := m.store.DeleteTransaction(ctx, txn.UserID, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if !deleted {
		return nil
	}

	if txn.Type == model.TypeExpense {
		month, year := monthYear(txn.Date)
		if err := m.store.ReverseUsage(ctx, txn.UserID, txn.Category, txn.Amount, month, year); err != nil {
			return fmt.Errorf("failed to reverse usage: %w", err)
		}
	}

	m.logger.Debug("transaction reversed",
		"user_id", txn.UserID,
		"transaction_id", txn.ID,
		"amount", txn.Amount)
	return nil
}

// Undo reverses the user's most recent transaction. The returned
// transaction is nil when there was nothing to undo.
func (m *Manager) Undo(ctx context.Context, userID int64) (*model.Transaction, error) {
	last, err := m.store.GetLastTransaction(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last transaction: %w", err)
	}
	if last == nil {
		return nil, nil
	}

	if err := m.Reverse(ctx, *last); err != nil {
		return nil, err
	}
	return last, nil
}

// Delete reverses one transaction by ID. The boolean reports whether the
// transaction existed and belonged to the user.
func (m *Manager) Delete(ctx context.Context, userID, id int64) (bool, error) {
	txn, err := m.store.GetTransactionByID(ctx, userID, id)
	if err != nil {
		return false, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn == nil {
		return false, nil
	}

	if err := m.Reverse(ctx, *txn); err != nil {
		return false, err
	}
	return true, nil
}

// SetLimit assigns the monthly limit for a category, creating the budget
// entry lazily on first assignment.
func (m *Manager) SetLimit(ctx context.Context, userID int64, category model.Category, limit float64) error {
	month, year := monthYear(m.now())
	return m.store.UpsertBudgetLimit(ctx, userID, category, limit, month, year)
}

// Status returns the dual-threshold alert for a category this month:
// "" below 80% or with no budget set, a WARNING line in [80%, 100%), and
// a LIMIT line at or past 100% with remaining clamped to zero.
func (m *Manager) Status(ctx context.Context, userID int64, category model.Category) (string, error) {
	month, year := monthYear(m.now())
	entry, err := m.store.GetBudgetEntry(ctx, userID, category, month, year)
	if err != nil {
		return "", fmt.Errorf("failed to load budget entry: %w", err)
	}
	if entry == nil || entry.Limit <= 0 {
		return "", nil
	}

	percent := entry.PercentUsed()
	switch {
	case percent >= limitThreshold:
		return fmt.Sprintf("🔴 LIMIT! Budget %s sudah 100%% terpakai.\nSisa: Rp 0", category), nil
	case percent >= warningThreshold:
		return fmt.Sprintf("⚠️ WARNING! Budget %s sudah %.0f%% terpakai.\nSisa: Rp %s",
			category, percent*100, FormatRupiah(entry.Remaining())), nil
	default:
		return "", nil
	}
}

// DetailedStatus renders the full limit/used/remaining breakdown for all
// of the user's budgets this month.
func (m *Manager) DetailedStatus(ctx context.Context, userID int64) (string, error) {
	month, year := monthYear(m.now())
	entries, err := m.store.GetBudgetEntries(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("failed to load budget entries: %w", err)
	}
	if len(entries) == 0 {
		return "Belum ada budget yang diatur. Pakai /setbudget [Kategori] [Nominal].", nil
	}

	out := "📊 Budget bulan ini\n"
	for _, e := range entries {
		out += fmt.Sprintf("\n%s\nLimit: Rp %s\nTerpakai: Rp %s\nSisa: Rp %s\n",
			e.Category,
			FormatRupiah(e.Limit),
			FormatRupiah(e.Usage),
			FormatRupiah(e.Remaining()))
	}
	return out, nil
}

// BurnRate compares actual usage against the expected linear pace for the
// elapsed part of the month and flags spending that runs more than 10
// percentage points ahead. It reacts to pace, not absolute level, and is
// independent of the threshold alerts. Months are approximated as 30
// days.
func (m *Manager) BurnRate(ctx context.Context, userID int64, category model.Category) (string, error) {
	now := m.now()
	month, year := monthYear(now)
	entry, err := m.store.GetBudgetEntry(ctx, userID, category, month, year)
	if err != nil {
		return "", fmt.Errorf("failed to load budget entry: %w", err)
	}
	if entry == nil || entry.Limit <= 0 {
		return "", nil
	}

	expectedPercent := float64(now.Day()) / burnRateDaysInMonth * 100
	actualPercent := entry.PercentUsed() * 100

	diff := actualPercent - expectedPercent
	if diff > burnRateTolerance {
		return fmt.Sprintf("⚠️ Pengeluaran kamu %.0f%% lebih cepat dari normal.", diff), nil
	}
	return "", nil
}

func monthYear(t time.Time) (int, int) {
	return int(t.Month()), t.Year()
}
