// Package scoring turns a typed transcript into speed, accuracy and pass/fail results.
package scoring

import (
	"math"
	"strings"

	"github.com/verte-zerg/typechallenge/internal/model"
)

// charsPerWord is the standard WPM word length.
const charsPerWord = 5.0

// Metrics holds the raw numbers computed for one transcript.
type Metrics struct {
	WPM           int
	Accuracy      float64
	Mistakes      int
	CorrectChars  int
	TypedChars    int
	CompletedText bool
}

// Normalize trims the text and collapses every whitespace run to a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Words splits text into whitespace separated words, dropping empty tokens.
func Words(s string) []string {
	return strings.Fields(s)
}

// Matches reports whether transcript equals reference after normalization.
func Matches(reference, transcript string) bool {
	return Normalize(transcript) == Normalize(reference)
}

// Score computes metrics for a transcript typed against reference in elapsedSeconds.
func Score(reference, transcript string, elapsedSeconds float64) Metrics {
	ref := []rune(Normalize(reference))
	typed := []rune(Normalize(transcript))

	var m Metrics
	m.TypedChars = len(typed)
	if string(typed) == string(ref) {
		m.CompletedText = true
		m.CorrectChars = len(typed)
	} else {
		m.Mistakes = wordMistakes(Words(string(ref)), Words(string(typed)))
		m.CorrectChars = correctChars(ref, typed)
	}

	minutes := math.Max(1, elapsedSeconds) / 60.0
	m.WPM = int(math.Round((float64(m.CorrectChars) / charsPerWord) / minutes))
	if m.TypedChars > 0 {
		m.Accuracy = round1(float64(m.CorrectChars) / float64(m.TypedChars) * 100)
	}
	return m
}

// Evaluate scores a finished attempt and applies the level thresholds.
func Evaluate(reference, transcript string, elapsedSeconds float64, finishedInTime bool, t model.LevelThresholds) model.AttemptResult {
	m := Score(reference, transcript, elapsedSeconds)
	res := model.AttemptResult{
		WPM:            m.WPM,
		Accuracy:       m.Accuracy,
		Mistakes:       m.Mistakes,
		CorrectChars:   m.CorrectChars,
		TypedChars:     m.TypedChars,
		ElapsedSeconds: math.Max(1, elapsedSeconds),
		CompletedText:  m.CompletedText,
		FinishedInTime: finishedInTime,
	}
	res.Passed = allPassed(Checklist(res, t))
	return res
}

// Positional comparison: a missing word counts as the empty string.
func wordMistakes(ref, typed []string) int {
	n := len(ref)
	if len(typed) > n {
		n = len(typed)
	}
	mistakes := 0
	for i := 0; i < n; i++ {
		if wordAt(ref, i) != wordAt(typed, i) {
			mistakes++
		}
	}
	return mistakes
}

func correctChars(ref, typed []rune) int {
	n := len(ref)
	if len(typed) < n {
		n = len(typed)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if typed[i] == ref[i] {
			correct++
		}
	}
	return correct
}

func wordAt(words []string, i int) string {
	if i < len(words) {
		return words[i]
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
