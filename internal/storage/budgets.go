package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adikusuma/duitbot/internal/model"
)

// GetBudgetEntries returns all budget entries for a user and month.
func (s *SQLiteStorage) GetBudgetEntries(ctx context.Context, userID int64, month, year int) ([]model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, category, month, year, limit_amount, usage_amount
		FROM budgets WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY category`, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.BudgetEntry
	for rows.Next() {
		var e model.BudgetEntry
		var category string
		if err := rows.Scan(&e.UserID, &category, &e.Month, &e.Year, &e.Limit, &e.Usage); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		e.Category = model.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return entries, nil
}

// GetBudgetEntry returns one budget entry, or nil when no limit has been
// set for the given user, category and month.
func (s *SQLiteStorage) GetBudgetEntry(ctx context.Context, userID int64, category model.Category, month, year int) (*model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}

	var e model.BudgetEntry
	var cat string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, category, month, year, limit_amount, usage_amount
		FROM budgets WHERE user_id = ? AND category = ? AND month = ? AND year = ?`,
		userID, string(category), month, year).Scan(
		&e.UserID, &cat, &e.Month, &e.Year, &e.Limit, &e.Usage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	e.Category = model.Category(cat)
	return &e, nil
}

// UpsertBudgetLimit creates the budget entry for a user, category and
// month on first assignment, or updates the limit in place. Usage is
// preserved across limit changes.
func (s *SQLiteStorage) UpsertBudgetLimit(ctx context.Context, userID int64, category model.Category, limit float64, month, year int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := validateAmount(limit, "limit"); err != nil {
		return err
	}
	if err := validateMonthYear(month, year); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category, month, year, limit_amount, usage_amount)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(user_id, category, month, year)
		DO UPDATE SET limit_amount = excluded.limit_amount`,
		userID, string(category), month, year, limit)
	if err != nil {
		return fmt.Errorf("failed to upsert budget limit: %w", err)
	}

	slog.Debug("budget limit set",
		"user_id", userID,
		"category", category,
		"limit", limit,
		"month", month,
		"year", year)
	return nil
}

// CommitUsage atomically adds amount to the budget entry's usage. A
// missing entry makes this a no-op: budgets are optional.
func (s *SQLiteStorage) CommitUsage(ctx context.Context, userID int64, category model.Category, amount float64, month, year int) error {
	return s.adjustUsage(ctx, userID, category, amount, month, year)
}

// ReverseUsage atomically subtracts amount from the budget entry's usage,
// the exact reversal of a prior commit. A missing entry is a no-op.
func (s *SQLiteStorage) ReverseUsage(ctx context.Context, userID int64, category model.Category, amount float64, month, year int) error {
	return s.adjustUsage(ctx, userID, category, -amount, month, year)
}

func (s *SQLiteStorage) adjustUsage(ctx context.Context, userID int64, category model.Category, delta float64, month, year int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := validateMonthYear(month, year); err != nil {
		return err
	}

	// Single UPDATE keeps the read-modify-write inside the store.
	_, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET usage_amount = usage_amount + ?
		WHERE user_id = ? AND category = ? AND month = ? AND year = ?`,
		delta, userID, string(category), month, year)
	if err != nil {
		return fmt.Errorf("failed to adjust budget usage: %w", err)
	}
	return nil
}

// UpsertMonthlyIncome records or replaces the user's declared income for
// a month.
func (s *SQLiteStorage) UpsertMonthlyIncome(ctx context.Context, userID int64, amount float64, month, year int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := validateAmount(amount, "amount"); err != nil {
		return err
	}
	if err := validateMonthYear(month, year); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monthly_incomes (user_id, amount, month, year)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, month, year)
		DO UPDATE SET amount = excluded.amount`,
		userID, amount, month, year)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly income: %w", err)
	}
	return nil
}

// GetLatestIncome returns the user's most recently recorded income, or
// nil when none has been declared.
func (s *SQLiteStorage) GetLatestIncome(ctx context.Context, userID int64) (*model.Income, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	var inc model.Income
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, amount, month, year
		FROM monthly_incomes WHERE user_id = ?
		ORDER BY id DESC LIMIT 1`, userID).Scan(
		&inc.UserID, &inc.Amount, &inc.Month, &inc.Year,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query income: %w", err)
	}

	return &inc, nil
}
