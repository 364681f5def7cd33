package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/verte-zerg/typechallenge/internal/model"
)

// Load returns the stored progress document for a user.
func (s *Store) Load(ctx context.Context, username string) (model.ProgressDocument, bool, error) {
	query, args, err := sqlBuilder.Select("document").From("progress").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return model.ProgressDocument{}, false, err
	}
	var raw string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProgressDocument{}, false, nil
	}
	if err != nil {
		return model.ProgressDocument{}, false, err
	}
	var doc model.ProgressDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.ProgressDocument{}, false, fmt.Errorf("failed to decode progress: %w", err)
	}
	return doc, true, nil
}

// Save replaces the user's progress document.
func (s *Store) Save(ctx context.Context, username string, doc model.ProgressDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	query, args, err := sqlBuilder.Insert("progress").
		Columns("username", "document", "updated_at").
		Values(username, string(data), formatTime(time.Now())).
		Suffix("ON CONFLICT(username) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes the user's progress document. Missing documents are ignored.
func (s *Store) Delete(ctx context.Context, username string) error {
	query, args, err := sqlBuilder.Delete("progress").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
