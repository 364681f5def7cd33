package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/verte-zerg/typechallenge/internal/model"
)

var userColumns = []string{"id", "name", "username", "email", "password_hash", "created_at"}

// CreateUser inserts a user. A taken username or e-mail yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	query, args, err := sqlBuilder.Insert("users").
		Columns("name", "username", "email", "password_hash", "created_at").
		Values(u.Name, u.Username, u.Email, u.PasswordHash, formatTime(u.CreatedAt)).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", u.Username, ErrConflict)
		}
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	return u, nil
}

// UserByUsername looks up a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.findUser(ctx, squirrel.Eq{"username": username})
}

// UserByLogin looks up a user by username or e-mail.
func (s *Store) UserByLogin(ctx context.Context, login string) (model.User, error) {
	return s.findUser(ctx, squirrel.Or{
		squirrel.Eq{"username": login},
		squirrel.Eq{"email": login},
	})
}

// EmailTaken reports whether a user already registered the e-mail.
func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check e-mail: %w", err)
	}
	return count > 0, nil
}

// ListUsers returns every user ordered by registration time.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	query, args, err := sqlBuilder.Select(userColumns...).From("users").
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeRows(rows)

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user together with stored progress.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s: %w", username, ErrUserNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE username = ?`, username); err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}
		return nil
	})
}

func (s *Store) findUser(ctx context.Context, where squirrel.Sqlizer) (model.User, error) {
	query, args, err := sqlBuilder.Select(userColumns...).From("users").
		Where(where).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return model.User{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = parsed
	return u, nil
}
