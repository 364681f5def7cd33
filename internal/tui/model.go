// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typechallenge/internal/attempt"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
	"github.com/verte-zerg/typechallenge/internal/scoring"
)

type screen int

const (
	screenPicker screen = iota
	screenPlay
	screenResults
)

// ProgressTracker is the part of the progress tracker the game uses.
type ProgressTracker interface {
	Load(ctx context.Context, userID string) (model.ProgressDocument, error)
	OnLevelPassed(ctx context.Context, userID string, level model.Level, stats model.LevelStats) *progress.PersistWarning
}

// Options configures a game session.
type Options struct {
	// User is the player whose progress is loaded and saved. Empty plays as a guest.
	User  string
	Clock attempt.Clock
	// Start opens the play screen for this level instead of the picker.
	Start *model.Level
}

// Model implements the Bubble Tea game UI.
type Model struct {
	catalog *levels.Catalog
	tracker ProgressTracker
	opts    Options

	width  int
	height int
	screen screen

	doc    model.ProgressDocument
	picker table.Model
	notice string

	att       *attempt.Attempt
	reference []rune
	typed     []rune
	tickGen   int

	outcome      *outcome
	showMistakes bool
}

type outcome struct {
	result    model.AttemptResult
	checklist []scoring.Requirement
	feedback  []string
	headline  string
	mistakes  []scoring.WordDiff
	warning   string
}

type tickMsg struct {
	gen int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	passStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
)

// NewModel constructs the game UI. tracker may be nil for guest play.
func NewModel(catalog *levels.Catalog, tracker ProgressTracker, opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = attempt.SystemClock()
	}
	m := &Model{
		catalog: catalog,
		tracker: tracker,
		opts:    opts,
		picker:  newPicker(),
	}
	m.refreshProgress()
	if opts.Start != nil {
		m.play(*opts.Start)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePicker()
		return m, nil
	case tickMsg:
		return m, m.onTick(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenPlay:
			return m, m.updatePlay(msg)
		case screenResults:
			return m, m.updateResults(msg)
		default:
			return m, m.updatePicker(msg)
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenPlay:
		return m.viewPlay()
	case screenResults:
		body = m.viewResults()
	default:
		body = m.viewPicker()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) guest() bool {
	return m.tracker == nil || m.opts.User == ""
}

func (m *Model) refreshProgress() {
	m.doc = progress.Default(m.catalog)
	if !m.guest() {
		doc, err := m.tracker.Load(context.Background(), m.opts.User)
		if err != nil {
			logErrf("failed to load progress: %v\n", err)
			m.notice = "Progress could not be loaded; showing an empty record."
		} else {
			m.doc = doc
		}
	}
	m.picker.SetRows(pickerRows(m.catalog, m.doc))
}

func (m *Model) play(level model.Level) {
	m.att = attempt.New(level, m.opts.Clock)
	m.reference = []rune(scoring.Normalize(level.Text))
	m.typed = nil
	m.outcome = nil
	m.showMistakes = false
	m.notice = ""
	m.tickGen++
	m.screen = screenPlay
}

func (m *Model) scheduleTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) onTick(msg tickMsg) tea.Cmd {
	if m.screen != screenPlay || m.att == nil || msg.gen != m.tickGen || m.att.State() != attempt.Running {
		return nil
	}
	if m.att.Tick() {
		m.finish()
		return nil
	}
	return m.scheduleTick()
}

// finish scores the attempt and records a pass. Repeated calls are no-ops.
func (m *Model) finish() {
	res, ok := m.att.End()
	if !ok {
		return
	}
	m.tickGen++
	level := m.att.Level()
	transcript := m.att.Transcript()
	out := &outcome{
		result:    res,
		checklist: scoring.Checklist(res, level.Thresholds),
		feedback:  scoring.Feedback(res, level.Thresholds, m.att.Remaining(), m.att.FinishedTyping()),
		headline:  scoring.Headline(res, level.Thresholds),
		mistakes:  scoring.WordDiffs(level.Text, transcript),
	}
	if res.Passed {
		if m.guest() {
			out.warning = "Playing as guest: progress is not saved."
		} else if warn := m.tracker.OnLevelPassed(context.Background(), m.opts.User, level, m.att.Stats()); warn != nil {
			out.warning = "Progress could not be saved: " + warn.Err.Error()
		}
		m.refreshProgress()
	}
	m.outcome = out
	m.showMistakes = false
	m.screen = screenResults
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
