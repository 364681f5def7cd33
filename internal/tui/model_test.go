package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typechallenge/internal/attempt"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
)

const easyOneText = "The sun is warm and the sky is blue."

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeTracker struct {
	doc    model.ProgressDocument
	passed []string
	err    error
}

func newFakeTracker(catalog *levels.Catalog) *fakeTracker {
	return &fakeTracker{doc: progress.Default(catalog)}
}

func (f *fakeTracker) Load(_ context.Context, _ string) (model.ProgressDocument, error) {
	return f.doc, nil
}

func (f *fakeTracker) OnLevelPassed(_ context.Context, userID string, level model.Level, stats model.LevelStats) *progress.PersistWarning {
	key := string(level.Difficulty) + "/" + level.Key()
	if f.err != nil {
		return &progress.PersistWarning{UserID: userID, Level: key, Err: f.err}
	}
	f.passed = append(f.passed, key)
	f.doc.Levels[level.Difficulty][level.Key()] = model.ProgressRecord{Completed: true, BestWPM: stats.WPM, BestAccuracy: stats.Accuracy}
	return nil
}

func loadCatalog(t *testing.T) *levels.Catalog {
	t.Helper()
	catalog, err := levels.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(m *Model, s string) {
	for _, r := range s {
		m.Update(key(string(r)))
	}
}

func TestEarlyMatchRecordsPass(t *testing.T) {
	catalog := loadCatalog(t)
	tracker := newFakeTracker(catalog)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewModel(catalog, tracker, Options{User: "ada", Clock: clock})

	m.Update(key("enter"))
	if m.screen != screenPlay {
		t.Fatalf("expected play screen, got %d", m.screen)
	}
	typeString(m, easyOneText[:len(easyOneText)-1])
	clock.now = clock.now.Add(5 * time.Second)
	typeString(m, ".")

	if m.screen != screenResults {
		t.Fatalf("expected results screen, got %d", m.screen)
	}
	res := m.outcome.result
	if !res.Passed || res.WPM != 86 || res.Accuracy != 100 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(tracker.passed) != 1 || tracker.passed[0] != "easy/level1" {
		t.Fatalf("expected one recorded pass, got %v", tracker.passed)
	}
	if m.outcome.warning != "" {
		t.Fatalf("unexpected warning %q", m.outcome.warning)
	}
	if !m.doc.Levels[model.Easy]["level1"].Completed {
		t.Fatalf("expected picker progress to refresh after a pass")
	}
}

func TestTimeoutEndsAttempt(t *testing.T) {
	catalog := loadCatalog(t)
	m := NewModel(catalog, newFakeTracker(catalog), Options{User: "ada", Clock: &fakeClock{now: time.Unix(0, 0)}})
	m.Update(key("enter"))
	typeString(m, "The sun")

	m.Update(tickMsg{gen: m.tickGen - 1})
	if m.att.Remaining() != 20 {
		t.Fatalf("stale tick should be ignored, remaining %d", m.att.Remaining())
	}
	for i := 0; i < 20; i++ {
		m.Update(tickMsg{gen: m.tickGen})
	}
	if m.screen != screenResults {
		t.Fatalf("expected results after expiry, got %d", m.screen)
	}
	res := m.outcome.result
	if res.Passed || res.FinishedInTime || res.ElapsedSeconds != 20 {
		t.Fatalf("unexpected timeout result %+v", res)
	}
	if !containsAll(strings.Join(m.outcome.feedback, "\n"), []string{"❌ Time ran out"}) {
		t.Fatalf("missing timeout feedback: %v", m.outcome.feedback)
	}

	// Ticks after the attempt ended do nothing.
	before := *m.outcome
	m.Update(tickMsg{gen: m.tickGen})
	if m.outcome.result != before.result {
		t.Fatalf("result changed after end")
	}
}

func TestResultsKeys(t *testing.T) {
	catalog := loadCatalog(t)
	m := NewModel(catalog, nil, Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	m.Update(key("enter"))
	typeString(m, "The moon")
	for i := 0; i < 20; i++ {
		m.Update(tickMsg{gen: m.tickGen})
	}

	m.Update(key("m"))
	if !m.showMistakes {
		t.Fatalf("expected mistakes view")
	}
	if view := m.View(); !strings.Contains(view, "moon") || !strings.Contains(view, "→") {
		t.Fatalf("mistakes view missing diff: %s", view)
	}

	m.Update(key("r"))
	if m.screen != screenPlay || m.att.State() != attempt.Idle || m.att.Remaining() != 20 || len(m.typed) != 0 {
		t.Fatalf("restart should reset the attempt")
	}

	m.Update(key("esc"))
	if m.screen != screenPicker {
		t.Fatalf("expected picker after esc, got %d", m.screen)
	}
}

func TestBackspaceEditsTranscript(t *testing.T) {
	catalog := loadCatalog(t)
	m := NewModel(catalog, nil, Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	m.Update(key("enter"))
	typeString(m, "Tx")
	m.Update(key("backspace"))
	if string(m.typed) != "T" || m.att.Transcript() != "T" {
		t.Fatalf("unexpected transcript %q / %q", string(m.typed), m.att.Transcript())
	}
}

func TestPersistFailureShowsWarning(t *testing.T) {
	catalog := loadCatalog(t)
	tracker := newFakeTracker(catalog)
	tracker.err = errors.New("disk full")
	clock := &fakeClock{now: time.Unix(0, 0)}
	level, err := catalog.Get(model.Easy, 1)
	if err != nil {
		t.Fatalf("get level: %v", err)
	}
	m := NewModel(catalog, tracker, Options{User: "ada", Clock: clock, Start: &level})
	typeString(m, "The")
	clock.now = clock.now.Add(5 * time.Second)
	typeString(m, easyOneText[3:])

	if !m.outcome.result.Passed {
		t.Fatalf("expected pass, got %+v", m.outcome.result)
	}
	if m.outcome.warning != "Progress could not be saved: disk full" {
		t.Fatalf("unexpected warning %q", m.outcome.warning)
	}
}

func TestGuestPassIsNotSaved(t *testing.T) {
	catalog := loadCatalog(t)
	clock := &fakeClock{now: time.Unix(0, 0)}
	m := NewModel(catalog, nil, Options{Clock: clock})
	m.Update(key("enter"))
	typeString(m, "T")
	clock.now = clock.now.Add(5 * time.Second)
	typeString(m, easyOneText[1:])
	if !strings.HasPrefix(m.outcome.warning, "Playing as guest") {
		t.Fatalf("unexpected warning %q", m.outcome.warning)
	}
}

func TestImpossibleLockedInPicker(t *testing.T) {
	catalog := loadCatalog(t)
	m := NewModel(catalog, newFakeTracker(catalog), Options{User: "ada"})
	m.Update(key("G"))
	m.Update(key("enter"))
	if m.screen != screenPicker {
		t.Fatalf("locked level should not start")
	}
	if m.notice != lockedNotice {
		t.Fatalf("unexpected notice %q", m.notice)
	}
	rows := pickerRows(catalog, m.doc)
	if rows[len(rows)-1][6] != "locked" {
		t.Fatalf("expected locked status, got %q", rows[len(rows)-1][6])
	}
}
