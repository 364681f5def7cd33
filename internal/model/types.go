// Package model defines shared data structures.
package model

import (
	"strconv"
	"time"
)

// Difficulty names a group of levels.
type Difficulty string

// Known difficulties, in unlock order.
const (
	Easy       Difficulty = "easy"
	Medium     Difficulty = "medium"
	Hard       Difficulty = "hard"
	Impossible Difficulty = "impossible"
)

// LevelThresholds defines what an attempt must reach to pass a level.
type LevelThresholds struct {
	MinWPM           int     `json:"minWpm" yaml:"min_wpm"`
	MinAccuracy      float64 `json:"minAccuracy" yaml:"min_accuracy"`
	MaxMistakes      int     `json:"maxMistakes" yaml:"max_mistakes"`
	TimeLimitSeconds int     `json:"timeLimitSeconds" yaml:"time_limit_seconds"`
}

// Level is a fixed reference text with its thresholds.
type Level struct {
	Difficulty  Difficulty      `json:"difficulty"`
	Number      int             `json:"levelNumber"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Text        string          `json:"text"`
	Thresholds  LevelThresholds `json:"thresholds"`
}

// Key returns the progress document key for the level ("level1").
func (l Level) Key() string {
	return LevelKey(l.Number)
}

// AttemptResult is computed once at the end of an attempt.
type AttemptResult struct {
	WPM            int     `json:"wpm"`
	Accuracy       float64 `json:"accuracy"`
	Mistakes       int     `json:"mistakes"`
	CorrectChars   int     `json:"correctChars"`
	TypedChars     int     `json:"typedChars"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	CompletedText  bool    `json:"completedText"`
	FinishedInTime bool    `json:"finishedInTime"`
	Passed         bool    `json:"passed"`
}

// ProgressRecord stores best scores for one level.
type ProgressRecord struct {
	Completed    bool       `json:"completed"`
	BestWPM      int        `json:"bestWpm"`
	BestAccuracy float64    `json:"bestAccuracy"`
	CompletedAt  *time.Time `json:"completedAt"`
}

// ProgressDocument is the per-user progress state.
type ProgressDocument struct {
	Levels         map[Difficulty]map[string]ProgressRecord `json:"levels"`
	TotalCompleted int                                      `json:"totalCompleted"`
	TotalLevels    int                                      `json:"totalLevels"`
	LastPlayed     *time.Time                               `json:"lastPlayed"`
}

// LevelStats carries the numbers reported when a level is passed.
type LevelStats struct {
	WPM           int     `json:"wpm"`
	Accuracy      float64 `json:"accuracy"`
	Mistakes      int     `json:"mistakes"`
	TimeRemaining int     `json:"timeRemaining"`
}

// User is a registered player.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the public view of a user.
type Profile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LevelKey builds the progress key for a level number.
func LevelKey(number int) string {
	return "level" + strconv.Itoa(number)
}
