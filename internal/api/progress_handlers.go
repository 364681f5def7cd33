package api

import (
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/typechallenge/internal/apperr"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/logger"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
	"github.com/verte-zerg/typechallenge/internal/scoring"
)

type saveProgressRequest struct {
	Username    string  `json:"username"`
	Difficulty  string  `json:"difficulty"`
	LevelNumber int     `json:"levelNumber"`
	WPM         int     `json:"wpm"`
	Accuracy    float64 `json:"accuracy"`
	Mistakes    int     `json:"mistakes"`

	// Only read when revalidation is on.
	Transcript     string  `json:"transcript,omitempty"`
	ElapsedSeconds float64 `json:"elapsedSeconds,omitempty"`
}

type saveProgressResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TotalCompleted int    `json:"totalCompleted"`
}

type progressSummary struct {
	CompletionPercentage int                          `json:"completionPercentage"`
	Difficulties         []progress.DifficultySummary `json:"difficulties"`
	Best                 progress.Performance         `json:"best"`
	RecentActivity       []progress.Activity          `json:"recentActivity"`
	ImpossibleUnlocked   bool                         `json:"impossibleUnlocked"`
}

type loadProgressResponse struct {
	Success  bool                   `json:"success"`
	Progress model.ProgressDocument `json:"progress"`
	Summary  progressSummary        `json:"summary"`
}

type resetProgressRequest struct {
	Username string `json:"username"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req saveProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		handleError(w, r, apperr.Validation("username", "required"))
		return
	}
	difficulty, err := levels.ParseDifficulty(req.Difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	level, err := s.Catalog.Get(difficulty, req.LevelNumber)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if _, err := s.Users.UserByUsername(ctx, req.Username); err != nil {
		handleError(w, r, err)
		return
	}

	stats := model.LevelStats{WPM: req.WPM, Accuracy: req.Accuracy, Mistakes: req.Mistakes}
	if s.Revalidate {
		verified, err := revalidate(level, req)
		if err != nil {
			logger.FromContext(ctx).Warn("rejected progress claim",
				slog.String("user", req.Username),
				slog.String("level", string(level.Difficulty)+"/"+level.Key()),
				slog.Int("claimed_wpm", req.WPM),
			)
			handleError(w, r, err)
			return
		}
		stats = verified
	}

	doc, err := s.Tracker.CompleteLevel(ctx, req.Username, level.Difficulty, level.Number, stats)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveProgressResponse{
		Success:        true,
		Message:        "Progress saved successfully",
		TotalCompleted: doc.TotalCompleted,
	})
}

// revalidate re-scores the submitted transcript and returns the server's numbers.
func revalidate(level model.Level, req saveProgressRequest) (model.LevelStats, error) {
	if strings.TrimSpace(req.Transcript) == "" || req.ElapsedSeconds <= 0 {
		return model.LevelStats{}, apperr.Validation("transcript", "transcript and elapsedSeconds are required")
	}
	limit := float64(level.Thresholds.TimeLimitSeconds)
	finishedInTime := req.ElapsedSeconds <= limit
	res := scoring.Evaluate(level.Text, req.Transcript, req.ElapsedSeconds, finishedInTime, level.Thresholds)
	if !res.Passed {
		return model.LevelStats{}, apperr.Unprocessable("submitted attempt does not meet the level requirements")
	}
	return model.LevelStats{
		WPM:           res.WPM,
		Accuracy:      res.Accuracy,
		Mistakes:      res.Mistakes,
		TimeRemaining: int(math.Max(0, limit-res.ElapsedSeconds)),
	}, nil
}

func (s *Server) handleLoadProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")
	if _, err := s.Users.UserByUsername(ctx, username); err != nil {
		handleError(w, r, err)
		return
	}
	doc, err := s.Tracker.Load(ctx, username)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loadProgressResponse{
		Success:  true,
		Progress: doc,
		Summary:  summarize(s.Catalog, doc),
	})
}

func summarize(catalog *levels.Catalog, doc model.ProgressDocument) progressSummary {
	sum := progressSummary{
		CompletionPercentage: progress.CompletionPercentage(doc),
		Best:                 progress.BestPerformance(doc),
		RecentActivity:       progress.RecentActivity(doc),
		ImpossibleUnlocked:   progress.ImpossibleUnlocked(doc),
	}
	for _, d := range catalog.Difficulties() {
		if stats, ok := progress.DifficultyStats(doc, d); ok {
			sum.Difficulties = append(sum.Difficulties, stats)
		}
	}
	return sum
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req resetProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if _, err := s.Users.UserByUsername(ctx, req.Username); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Tracker.Reset(ctx, req.Username); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Progress reset successfully"})
}
