package scoring

import (
	"fmt"

	"github.com/verte-zerg/typechallenge/internal/model"
)

// RequirementKind identifies one pass condition.
type RequirementKind string

// Pass conditions in display order.
const (
	RequireCompletion RequirementKind = "completion"
	RequireSpeed      RequirementKind = "speed"
	RequireAccuracy   RequirementKind = "accuracy"
	RequireMistakes   RequirementKind = "mistakes"
	RequireTime       RequirementKind = "time"
)

// Requirement is one row of the pass checklist.
type Requirement struct {
	Kind     RequirementKind `json:"kind"`
	Required float64         `json:"required"`
	Achieved float64         `json:"achieved"`
	Passed   bool            `json:"passed"`
}

// WordDiff compares one reference word with the word typed at the same position.
type WordDiff struct {
	Expected string `json:"expected"`
	Typed    string `json:"typed"`
	Correct  bool   `json:"correct"`
}

// Checklist evaluates every pass condition independently.
func Checklist(res model.AttemptResult, t model.LevelThresholds) []Requirement {
	return []Requirement{
		{Kind: RequireCompletion, Required: 1, Achieved: boolValue(res.CompletedText), Passed: res.CompletedText},
		{Kind: RequireSpeed, Required: float64(t.MinWPM), Achieved: float64(res.WPM), Passed: res.WPM >= t.MinWPM},
		{Kind: RequireAccuracy, Required: t.MinAccuracy, Achieved: res.Accuracy, Passed: res.Accuracy >= t.MinAccuracy},
		{Kind: RequireMistakes, Required: float64(t.MaxMistakes), Achieved: float64(res.Mistakes), Passed: res.Mistakes <= t.MaxMistakes},
		{Kind: RequireTime, Required: 1, Achieved: boolValue(res.FinishedInTime), Passed: res.FinishedInTime},
	}
}

// Feedback renders one line per checklist row.
func Feedback(res model.AttemptResult, t model.LevelThresholds, timeRemaining int, finishedTyping bool) []string {
	lines := make([]string, 0, 5)
	if res.CompletedText {
		lines = append(lines, "✅ Paragraph completed")
	} else {
		lines = append(lines, "❌ Complete the full paragraph")
	}
	if res.WPM >= t.MinWPM {
		lines = append(lines, fmt.Sprintf("✅ Speed: %d WPM", res.WPM))
	} else {
		lines = append(lines, fmt.Sprintf("❌ Speed: %d WPM (need %d+ WPM)", res.WPM, t.MinWPM))
	}
	if res.Accuracy >= t.MinAccuracy {
		lines = append(lines, fmt.Sprintf("✅ Accuracy: %.1f%%", res.Accuracy))
	} else {
		lines = append(lines, fmt.Sprintf("❌ Accuracy: %.1f%% (need %g%%+)", res.Accuracy, t.MinAccuracy))
	}
	if res.Mistakes <= t.MaxMistakes {
		lines = append(lines, fmt.Sprintf("✅ Mistakes: %d", res.Mistakes))
	} else {
		lines = append(lines, fmt.Sprintf("❌ Mistakes: %d (max %d allowed)", res.Mistakes, t.MaxMistakes))
	}
	switch {
	case !res.FinishedInTime:
		lines = append(lines, "❌ Time ran out")
	case finishedTyping:
		lines = append(lines, "✅ Completed before time ran out")
	default:
		lines = append(lines, fmt.Sprintf("✅ Finished with %ds remaining", timeRemaining))
	}
	return lines
}

// Headline picks the overall message shown above the checklist.
func Headline(res model.AttemptResult, t model.LevelThresholds) string {
	if res.Passed {
		return "🎉 Level completed! All requirements met!"
	}
	if res.CompletedText {
		passed := 0
		for _, r := range Checklist(res, t)[1:] {
			if r.Passed {
				passed++
			}
		}
		if passed >= 3 {
			return "🔥 Almost there! Check requirements below."
		}
		return "📈 Good progress! Work on the highlighted areas."
	}
	switch {
	case res.WPM >= 90:
		return "🚀 Amazing speed!"
	case res.WPM >= 70:
		return "⚡ Great speed!"
	case res.WPM >= 40:
		return "🙂 Nice start, keep going!"
	default:
		return "💪 Keep practicing to improve!"
	}
}

// WordDiffs lists every reference word next to the word typed at the same position.
func WordDiffs(reference, transcript string) []WordDiff {
	ref := Words(Normalize(reference))
	typed := Words(Normalize(transcript))
	out := make([]WordDiff, 0, len(ref))
	for i, word := range ref {
		got := wordAt(typed, i)
		out = append(out, WordDiff{Expected: word, Typed: got, Correct: got == word})
	}
	return out
}

func allPassed(reqs []Requirement) bool {
	for _, r := range reqs {
		if !r.Passed {
			return false
		}
	}
	return true
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
