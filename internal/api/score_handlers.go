package api

import (
	"math"
	"net/http"

	"github.com/verte-zerg/typechallenge/internal/apperr"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/scoring"
)

type scoreRequest struct {
	Difficulty     string  `json:"difficulty"`
	LevelNumber    int     `json:"levelNumber"`
	Transcript     string  `json:"transcript"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	FinishedInTime *bool   `json:"finishedInTime,omitempty"`
}

type scoreResponse struct {
	Result    model.AttemptResult   `json:"result"`
	Checklist []scoring.Requirement `json:"checklist"`
	Feedback  []string              `json:"feedback"`
	Headline  string                `json:"headline"`
	Mistakes  []scoring.WordDiff    `json:"mistakes"`
	Warning   string                `json:"warning,omitempty"`
}

type levelSummary struct {
	Difficulty  model.Difficulty      `json:"difficulty"`
	LevelNumber int                   `json:"levelNumber"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Text        string                `json:"text"`
	Characters  int                   `json:"characters"`
	Thresholds  model.LevelThresholds `json:"thresholds"`
}

// buildScoreResponse assembles everything a results screen shows.
func buildScoreResponse(level model.Level, transcript string, res model.AttemptResult, remaining int, finishedTyping bool) scoreResponse {
	return scoreResponse{
		Result:    res,
		Checklist: scoring.Checklist(res, level.Thresholds),
		Feedback:  scoring.Feedback(res, level.Thresholds, remaining, finishedTyping),
		Headline:  scoring.Headline(res, level.Thresholds),
		Mistakes:  scoring.WordDiffs(level.Text, transcript),
	}
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
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
	if req.ElapsedSeconds < 0 {
		handleError(w, r, apperr.Validation("elapsedSeconds", "must not be negative"))
		return
	}

	limit := float64(level.Thresholds.TimeLimitSeconds)
	finishedInTime := req.ElapsedSeconds <= limit
	if req.FinishedInTime != nil {
		finishedInTime = *req.FinishedInTime
	}
	res := scoring.Evaluate(level.Text, req.Transcript, req.ElapsedSeconds, finishedInTime, level.Thresholds)
	remaining := int(math.Max(0, limit-res.ElapsedSeconds))
	writeJSON(w, http.StatusOK, buildScoreResponse(level, req.Transcript, res, remaining, res.CompletedText && finishedInTime))
}

func (s *Server) handleLevels(w http.ResponseWriter, _ *http.Request) {
	all := s.Catalog.All()
	out := make([]levelSummary, 0, len(all))
	for _, l := range all {
		out = append(out, levelSummary{
			Difficulty:  l.Difficulty,
			LevelNumber: l.Number,
			Name:        l.Name,
			Description: l.Description,
			Text:        l.Text,
			Characters:  len([]rune(scoring.Normalize(l.Text))),
			Thresholds:  l.Thresholds,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"levels": out})
}
