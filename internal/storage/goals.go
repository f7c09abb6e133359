package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adikusuma/duitbot/internal/model"
)

// AddSavingGoal creates a new active saving goal and returns its ID.
func (s *SQLiteStorage) AddSavingGoal(ctx context.Context, userID int64, name string, target float64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateUserID(userID); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	if err := validateAmount(target, "target"); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO saving_goals (user_id, name, target_amount)
		VALUES (?, ?, ?)`, userID, name, target)
	if err != nil {
		return 0, fmt.Errorf("failed to insert saving goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get saving goal id: %w", err)
	}
	return id, nil
}

// AddToSavingGoal atomically adds amount to a goal's progress and returns
// the updated goal, or nil when the goal does not belong to the user.
func (s *SQLiteStorage) AddToSavingGoal(ctx context.Context, userID, goalID int64, amount float64) (*model.SavingGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateAmount(amount, "amount"); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE saving_goals SET current_amount = current_amount + ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		amount, goalID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update saving goal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.getSavingGoal(ctx, userID, goalID)
}

// GetSavingGoals returns the user's active saving goals.
func (s *SQLiteStorage) GetSavingGoals(ctx context.Context, userID int64) ([]model.SavingGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, target_amount, current_amount, active
		FROM saving_goals WHERE user_id = ? AND active = 1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saving goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.SavingGoal
	for rows.Next() {
		var g model.SavingGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.Current, &g.Active); err != nil {
			return nil, fmt.Errorf("failed to scan saving goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saving goals: %w", err)
	}

	return goals, nil
}

func (s *SQLiteStorage) getSavingGoal(ctx context.Context, userID, goalID int64) (*model.SavingGoal, error) {
	var g model.SavingGoal
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, target_amount, current_amount, active
		FROM saving_goals WHERE id = ? AND user_id = ?`, goalID, userID).Scan(
		&g.ID, &g.UserID, &g.Name, &g.Target, &g.Current, &g.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query saving goal: %w", err)
	}
	return &g, nil
}
