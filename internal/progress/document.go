// Package progress records level completions and best scores per player.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
)

// DifficultySummary is the completion count for one difficulty.
type DifficultySummary struct {
	Difficulty model.Difficulty `json:"difficulty"`
	Completed  int              `json:"completed"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
}

// Performance holds the best values across all completed levels.
type Performance struct {
	BestWPM      int     `json:"bestWpm"`
	BestAccuracy float64 `json:"bestAccuracy"`
}

// Activity is one completed level, for the recent activity list.
type Activity struct {
	Difficulty  model.Difficulty `json:"difficulty"`
	Level       string           `json:"level"`
	CompletedAt time.Time        `json:"completedAt"`
	WPM         int              `json:"wpm"`
	Accuracy    float64          `json:"accuracy"`
}

// Default returns an empty document with a record for every catalog level.
func Default(catalog *levels.Catalog) model.ProgressDocument {
	doc := model.ProgressDocument{
		Levels:      map[model.Difficulty]map[string]model.ProgressRecord{},
		TotalLevels: catalog.Len(),
	}
	for _, l := range catalog.All() {
		if doc.Levels[l.Difficulty] == nil {
			doc.Levels[l.Difficulty] = map[string]model.ProgressRecord{}
		}
		doc.Levels[l.Difficulty][l.Key()] = model.ProgressRecord{}
	}
	return doc
}

// Fill adds missing catalog levels to a stored document.
func Fill(doc model.ProgressDocument, catalog *levels.Catalog) model.ProgressDocument {
	if doc.Levels == nil {
		doc.Levels = map[model.Difficulty]map[string]model.ProgressRecord{}
	}
	for _, l := range catalog.All() {
		if doc.Levels[l.Difficulty] == nil {
			doc.Levels[l.Difficulty] = map[string]model.ProgressRecord{}
		}
		if _, ok := doc.Levels[l.Difficulty][l.Key()]; !ok {
			doc.Levels[l.Difficulty][l.Key()] = model.ProgressRecord{}
		}
	}
	doc.TotalLevels = catalog.Len()
	doc.TotalCompleted = TotalCompleted(doc)
	return doc
}

// Apply records a passed level on doc using the best-so-far rule.
// Completion is sticky and the completion time is refreshed on every call.
func Apply(doc model.ProgressDocument, difficulty model.Difficulty, number int, stats model.LevelStats, now time.Time) model.ProgressDocument {
	if doc.Levels == nil {
		doc.Levels = map[model.Difficulty]map[string]model.ProgressRecord{}
	}
	if doc.Levels[difficulty] == nil {
		doc.Levels[difficulty] = map[string]model.ProgressRecord{}
	}
	key := model.LevelKey(number)
	rec := doc.Levels[difficulty][key]
	rec.Completed = true
	completedAt := now
	rec.CompletedAt = &completedAt
	if stats.WPM > rec.BestWPM {
		rec.BestWPM = stats.WPM
	}
	if stats.Accuracy > rec.BestAccuracy {
		rec.BestAccuracy = stats.Accuracy
	}
	doc.Levels[difficulty][key] = rec

	doc.TotalCompleted = TotalCompleted(doc)
	lastPlayed := now
	doc.LastPlayed = &lastPlayed
	return doc
}

// TotalCompleted counts completed levels across all difficulties.
func TotalCompleted(doc model.ProgressDocument) int {
	count := 0
	for _, levels := range doc.Levels {
		for _, rec := range levels {
			if rec.Completed {
				count++
			}
		}
	}
	return count
}

// CompletionPercentage returns the rounded share of completed levels.
func CompletionPercentage(doc model.ProgressDocument) int {
	if doc.TotalLevels <= 0 {
		return 0
	}
	return int(math.Round(float64(TotalCompleted(doc)) / float64(doc.TotalLevels) * 100))
}

// DifficultyStats summarizes one difficulty. ok is false when the document has no such difficulty.
func DifficultyStats(doc model.ProgressDocument, difficulty model.Difficulty) (DifficultySummary, bool) {
	levels, ok := doc.Levels[difficulty]
	if !ok || len(levels) == 0 {
		return DifficultySummary{Difficulty: difficulty}, false
	}
	stats := DifficultySummary{Difficulty: difficulty, Total: len(levels)}
	for _, rec := range levels {
		if rec.Completed {
			stats.Completed++
		}
	}
	stats.Percentage = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	return stats, true
}

// BestPerformance returns the best WPM and accuracy over completed levels.
func BestPerformance(doc model.ProgressDocument) Performance {
	var p Performance
	for _, levels := range doc.Levels {
		for _, rec := range levels {
			if !rec.Completed {
				continue
			}
			if rec.BestWPM > p.BestWPM {
				p.BestWPM = rec.BestWPM
			}
			if rec.BestAccuracy > p.BestAccuracy {
				p.BestAccuracy = rec.BestAccuracy
			}
		}
	}
	return p
}

// RecentActivity lists completed levels, most recent first.
func RecentActivity(doc model.ProgressDocument) []Activity {
	var out []Activity
	for difficulty, levels := range doc.Levels {
		for key, rec := range levels {
			if !rec.Completed || rec.CompletedAt == nil {
				continue
			}
			out = append(out, Activity{
				Difficulty:  difficulty,
				Level:       key,
				CompletedAt: *rec.CompletedAt,
				WPM:         rec.BestWPM,
				Accuracy:    rec.BestAccuracy,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			if out[i].Difficulty == out[j].Difficulty {
				return out[i].Level < out[j].Level
			}
			return out[i].Difficulty < out[j].Difficulty
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out
}

// ImpossibleUnlocked reports whether every easy, medium and hard level is complete.
func ImpossibleUnlocked(doc model.ProgressDocument) bool {
	for _, d := range []model.Difficulty{model.Easy, model.Medium, model.Hard} {
		stats, ok := DifficultyStats(doc, d)
		if !ok || stats.Percentage != 100 {
			return false
		}
	}
	return true
}

// Locked reports whether a level cannot be played yet.
func Locked(doc model.ProgressDocument, l model.Level) bool {
	return l.Difficulty == model.Impossible && !ImpossibleUnlocked(doc)
}
