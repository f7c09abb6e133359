package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adikusuma/duitbot/internal/model"
)

// GetOrCreateUser returns the user with the given external (transport)
// ID, creating it on first contact.
func (s *SQLiteStorage) GetOrCreateUser(ctx context.Context, externalID, username string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (external_id, username) VALUES (?, ?)`,
		externalID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get new user id: %w", err)
	}

	return &model.User{ID: id, ExternalID: externalID, Username: username}, nil
}

// GetUser returns the user with the given external ID, or nil when the
// user is unknown.
func (s *SQLiteStorage) GetUser(ctx context.Context, externalID string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, external_id, COALESCE(username, ''), pinned_message_ref, created_at
		FROM users WHERE external_id = ?`, externalID).Scan(
		&user.ID, &user.ExternalID, &user.Username, &user.PinnedMessageRef, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// GetAllUsers returns every registered user, for digest broadcasts.
func (s *SQLiteStorage) GetAllUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, external_id, COALESCE(username, ''), pinned_message_ref, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Username, &u.PinnedMessageRef, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// SetPinnedMessageRef records the transport reference of a user's pinned
// dashboard message.
func (s *SQLiteStorage) SetPinnedMessageRef(ctx context.Context, userID int64, ref string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET pinned_message_ref = ? WHERE id = ?`, ref, userID)
	if err != nil {
		return fmt.Errorf("failed to update pinned message ref: %w", err)
	}
	return nil
}
