package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/logger"
	"github.com/verte-zerg/typechallenge/internal/model"
)

// Store persists one progress document per user.
type Store interface {
	Load(ctx context.Context, userID string) (model.ProgressDocument, bool, error)
	Save(ctx context.Context, userID string, doc model.ProgressDocument) error
	Delete(ctx context.Context, userID string) error
}

// PersistWarning reports that a passed level could not be recorded.
// The attempt result itself is unaffected.
type PersistWarning struct {
	UserID string
	Level  string
	Err    error
}

func (w *PersistWarning) Error() string {
	return fmt.Sprintf("progress for %s not saved (%s): %v", w.UserID, w.Level, w.Err)
}

func (w *PersistWarning) Unwrap() error {
	return w.Err
}

// Tracker applies level completions to stored progress documents.
type Tracker struct {
	store   Store
	catalog *levels.Catalog
	now     func() time.Time
	mu      sync.Mutex
}

// NewTracker creates a tracker over store.
func NewTracker(store Store, catalog *levels.Catalog) *Tracker {
	return &Tracker{store: store, catalog: catalog, now: time.Now}
}

// WithClock replaces the time source used for completion timestamps.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Catalog returns the level catalog the tracker validates against.
func (t *Tracker) Catalog() *levels.Catalog {
	return t.catalog
}

// Load returns the user's document, or the default document when none exists.
func (t *Tracker) Load(ctx context.Context, userID string) (model.ProgressDocument, error) {
	doc, ok, err := t.store.Load(ctx, userID)
	if err != nil {
		return model.ProgressDocument{}, fmt.Errorf("failed to load progress: %w", err)
	}
	if !ok {
		return Default(t.catalog), nil
	}
	return Fill(doc, t.catalog), nil
}

// CompleteLevel records a pass for the level and returns the updated document.
func (t *Tracker) CompleteLevel(ctx context.Context, userID string, difficulty model.Difficulty, number int, stats model.LevelStats) (model.ProgressDocument, error) {
	if _, err := t.catalog.Get(difficulty, number); err != nil {
		return model.ProgressDocument{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.Load(ctx, userID)
	if err != nil {
		return model.ProgressDocument{}, err
	}
	doc = Apply(doc, difficulty, number, stats, t.now().UTC())
	if err := t.store.Save(ctx, userID, doc); err != nil {
		return model.ProgressDocument{}, fmt.Errorf("failed to save progress: %w", err)
	}
	logger.FromContext(ctx).Debug("level completed",
		slog.String("component", "progress"),
		slog.String("user", userID),
		slog.String("difficulty", string(difficulty)),
		slog.Int("level", number),
		slog.Int("wpm", stats.WPM),
		slog.Float64("accuracy", stats.Accuracy),
	)
	return doc, nil
}

// OnLevelPassed records a pass without failing the caller. A store error is
// returned as a warning to show next to the result.
func (t *Tracker) OnLevelPassed(ctx context.Context, userID string, level model.Level, stats model.LevelStats) *PersistWarning {
	if _, err := t.CompleteLevel(ctx, userID, level.Difficulty, level.Number, stats); err != nil {
		logger.FromContext(ctx).Warn("failed to record level completion",
			slog.String("component", "progress"),
			slog.String("user", userID),
			slog.String("level", string(level.Difficulty)+"/"+level.Key()),
			slog.Any("error", err),
		)
		return &PersistWarning{UserID: userID, Level: string(level.Difficulty) + "/" + level.Key(), Err: err}
	}
	return nil
}

// Reset discards all progress for the user.
func (t *Tracker) Reset(ctx context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
