package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

// GetOrCreateUser inserts u unless a user with the same external id exists, then returns the stored row.
func (s *SQLStore) GetOrCreateUser(ctx context.Context, u model.User) (model.User, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
INSERT INTO users(id, external_id, timezone, language, created_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(external_id) DO NOTHING
`), u.ID, u.ExternalID, u.Timezone, u.Language, formatTime(u.CreatedAt))
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	row := s.db.QueryRowContext(ctx, s.q(`
SELECT id, external_id, timezone, language, created_at FROM users WHERE external_id = ?
`), u.ExternalID)
	return scanUser(row)
}

// FindUser looks a user up by external id without creating one.
func (s *SQLStore) FindUser(ctx context.Context, externalID string) (model.User, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
SELECT id, external_id, timezone, language, created_at FROM users WHERE external_id = ?
`), externalID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}

func (s *SQLStore) UpdateUserTimezone(ctx context.Context, userID, timezone string) error {
	return s.updateUser(ctx, `UPDATE users SET timezone = ? WHERE id = ?`, timezone, userID)
}

func (s *SQLStore) UpdateUserLanguage(ctx context.Context, userID, language string) error {
	return s.updateUser(ctx, `UPDATE users SET language = ? WHERE id = ?`, language, userID)
}

func (s *SQLStore) updateUser(ctx context.Context, query, value, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(query), value, userID)
	if err != nil {
		return fmt.Errorf("update user %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, external_id, timezone, language, created_at FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	var created string
	if err := row.Scan(&u.ID, &u.ExternalID, &u.Timezone, &u.Language, &created); err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}
