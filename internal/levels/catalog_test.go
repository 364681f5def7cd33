package levels

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/typechallenge/internal/model"
)

func TestLoadBuiltinCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if c.Len() != 10 {
		t.Fatalf("expected 10 levels, got %d", c.Len())
	}
	diffs := c.Difficulties()
	want := []model.Difficulty{model.Easy, model.Medium, model.Hard, model.Impossible}
	if len(diffs) != len(want) {
		t.Fatalf("unexpected difficulties: %v", diffs)
	}
	for i := range want {
		if diffs[i] != want[i] {
			t.Fatalf("unexpected difficulty order: %v", diffs)
		}
	}
}

func TestBuiltinThresholdTiers(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cases := []struct {
		d    model.Difficulty
		n    int
		want model.LevelThresholds
	}{
		{model.Hard, 1, model.LevelThresholds{MinWPM: 50, MinAccuracy: 92, MaxMistakes: 10, TimeLimitSeconds: 150}},
		{model.Hard, 3, model.LevelThresholds{MinWPM: 70, MinAccuracy: 94, MaxMistakes: 15, TimeLimitSeconds: 240}},
		{model.Impossible, 1, model.LevelThresholds{MinWPM: 80, MinAccuracy: 95, MaxMistakes: 20, TimeLimitSeconds: 300}},
	}
	for _, tc := range cases {
		l, err := c.Get(tc.d, tc.n)
		if err != nil {
			t.Fatalf("get %s %d: %v", tc.d, tc.n, err)
		}
		if l.Thresholds != tc.want {
			t.Fatalf("%s %d: expected %+v, got %+v", tc.d, tc.n, tc.want, l.Thresholds)
		}
		if strings.Contains(l.Text, "\n") {
			t.Fatalf("%s %d: expected folded text", tc.d, tc.n)
		}
	}
}

func TestThresholdsEscalate(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	all := c.All()
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if cur.Thresholds.MinWPM < prev.Thresholds.MinWPM || cur.Thresholds.TimeLimitSeconds < prev.Thresholds.TimeLimitSeconds {
			t.Fatalf("thresholds drop from %s %d to %s %d", prev.Difficulty, prev.Number, cur.Difficulty, cur.Number)
		}
		if len(cur.Text) < len(prev.Text) {
			t.Fatalf("text shrinks from %s %d to %s %d", prev.Difficulty, prev.Number, cur.Difficulty, cur.Number)
		}
	}
}

func TestGetUnknownLevel(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, err := c.Get(model.Impossible, 2); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
	if _, err := ParseDifficulty("nightmare"); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestParseRejectsInvalidCatalog(t *testing.T) {
	cases := map[string]string{
		"empty":      "levels: []",
		"difficulty": "levels:\n  - {difficulty: extreme, number: 1, text: a, thresholds: {time_limit_seconds: 1}}",
		"time":       "levels:\n  - {difficulty: easy, number: 1, text: a, thresholds: {time_limit_seconds: 0}}",
		"accuracy":   "levels:\n  - {difficulty: easy, number: 1, text: a, thresholds: {time_limit_seconds: 5, min_accuracy: 101}}",
		"duplicate": "levels:\n  - {difficulty: easy, number: 1, text: a, thresholds: {time_limit_seconds: 5}}\n" +
			"  - {difficulty: easy, number: 1, text: b, thresholds: {time_limit_seconds: 5}}",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadFileSortsLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.yaml")
	data := `levels:
  - difficulty: hard
    number: 1
    text: hard text
    thresholds: {time_limit_seconds: 60}
  - difficulty: easy
    number: 2
    text: second
    thresholds: {time_limit_seconds: 30}
  - difficulty: easy
    number: 1
    text: first
    thresholds: {time_limit_seconds: 20}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	all := c.All()
	if all[0].Text != "first" || all[1].Text != "second" || all[2].Difficulty != model.Hard {
		t.Fatalf("unexpected order: %+v", all)
	}
	if len(c.ByDifficulty(model.Easy)) != 2 {
		t.Fatalf("expected 2 easy levels")
	}
}
