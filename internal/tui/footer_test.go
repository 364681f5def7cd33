package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typechallenge/internal/attempt"
	"github.com/verte-zerg/typechallenge/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	catalog := loadCatalog(t)
	level, err := catalog.Get(model.Easy, 1)
	if err != nil {
		t.Fatalf("get level: %v", err)
	}
	tracker := newFakeTracker(catalog)
	tracker.doc.Levels[model.Easy]["level1"] = model.ProgressRecord{Completed: true, BestWPM: 72, BestAccuracy: 97.8}

	m := NewModel(catalog, tracker, Options{User: "ada", Clock: &fakeClock{now: time.Unix(0, 0)}, Start: &level})
	out := m.renderFooter()
	if !containsAll(out, []string{"Time 20s", "Start typing to begin", "Best 72 WPM · 97.8%"}) {
		t.Fatalf("footer missing idle segments: %s", out)
	}

	typeString(m, "The sun is")
	if m.att.State() != attempt.Running {
		t.Fatalf("expected running attempt, got %s", m.att.State())
	}
	out = m.renderFooter()
	if !containsAll(out, []string{"Time 20s", "Progress 27%"}) {
		t.Fatalf("footer missing running segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
