package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

// AppendTransaction stores a committed transaction and returns its ID.
func (s *SQLiteStorage) AppendTransaction(ctx context.Context, txn model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateUserID(txn.UserID); err != nil {
		return 0, err
	}
	if err := validateAmount(txn.Amount, "amount"); err != nil {
		return 0, err
	}
	if txn.Category == "" {
		return 0, fmt.Errorf("category cannot be empty")
	}
	if txn.Type != model.TypeExpense && txn.Type != model.TypeIncome {
		return 0, fmt.Errorf("invalid transaction type: %q", txn.Type)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, amount, category, description, type, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		txn.UserID, txn.Amount, string(txn.Category), txn.Description, string(txn.Type), txn.Date)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}

	slog.Debug("appended transaction",
		"id", id,
		"user_id", txn.UserID,
		"category", txn.Category,
		"type", txn.Type)
	return id, nil
}

// DeleteTransaction removes a transaction owned by the given user. The
// boolean reports whether a row was actually deleted.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, userID, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateUserID(userID); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return affected > 0, nil
}

// GetTransactionByID returns one transaction owned by the user, or nil.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, userID, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, category, COALESCE(description, ''), type, date
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

// GetLastTransaction returns the user's most recently appended
// transaction, or nil when none exist.
func (s *SQLiteStorage) GetLastTransaction(ctx context.Context, userID int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, category, COALESCE(description, ''), type, date
		FROM transactions WHERE user_id = ?
		ORDER BY id DESC LIMIT 1`, userID)
	return scanTransaction(row)
}

// ListTransactions returns the user's transactions matching the filter,
// newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	conditions = append(conditions, "user_id = ?")
	args = append(args, userID)

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date < ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, string(*filter.Category))
	}
	if filter.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*filter.Type))
	}

	query := `
		SELECT id, user_id, amount, category, COALESCE(description, ''), type, date
		FROM transactions WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY date DESC, id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var category, txType string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &category, &t.Description, &txType, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Category = model.Category(category)
		t.Type = model.TransactionType(txType)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

func scanTransaction(row *sql.Row) (*model.Transaction, error) {
	var t model.Transaction
	var category, txType string
	err := row.Scan(&t.ID, &t.UserID, &t.Amount, &category, &t.Description, &txType, &t.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	t.Category = model.Category(category)
	t.Type = model.TransactionType(txType)
	return &t, nil
}
