package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typechallenge/internal/attempt"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/logger"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
	"github.com/verte-zerg/typechallenge/internal/scoring"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsInbound struct {
	Type        string `json:"type"`
	Username    string `json:"username,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	LevelNumber int    `json:"levelNumber,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

type wsOutbound struct {
	Type      string                `json:"type"`
	AttemptID string                `json:"attemptId,omitempty"`
	TimeLimit int                   `json:"timeLimit,omitempty"`
	Text      string                `json:"text,omitempty"`
	Remaining *int                  `json:"remaining,omitempty"`
	Result    *model.AttemptResult  `json:"result,omitempty"`
	Checklist []scoring.Requirement `json:"checklist,omitempty"`
	Feedback  []string              `json:"feedback,omitempty"`
	Headline  string                `json:"headline,omitempty"`
	Mistakes  []scoring.WordDiff    `json:"mistakes,omitempty"`
	Warning   string                `json:"warning,omitempty"`
	Message   string                `json:"message,omitempty"`
}

// liveAttempt is one websocket connection. The server owns the attempt and
// its countdown; the client only streams its transcript.
type liveAttempt struct {
	srv  *Server
	ctx  context.Context
	log  *slog.Logger
	send chan wsOutbound
	done chan struct{}
	wg   sync.WaitGroup

	mu       sync.Mutex
	att      *attempt.Attempt
	username string
	stopTick chan struct{}
}

func (s *Server) handleAttemptWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(slog.String("component", "ws_attempt"))
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	la := &liveAttempt{
		srv:  s,
		ctx:  r.Context(),
		log:  log,
		send: make(chan wsOutbound, 16),
		done: make(chan struct{}),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range la.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("websocket write failed", slog.Any("error", err))
				_ = conn.Close()
				// Drain so emitters never block on a dead connection.
				for range la.send {
				}
				return
			}
		}
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			break
		}
		la.handle(in)
	}

	close(la.done)
	la.mu.Lock()
	la.stopTicker()
	la.mu.Unlock()
	la.wg.Wait()
	close(la.send)
	<-writerDone
}

func (la *liveAttempt) emit(msg wsOutbound) {
	select {
	case la.send <- msg:
	case <-la.done:
	}
}

func (la *liveAttempt) fail(message string) {
	la.emit(wsOutbound{Type: "error", Message: message})
}

func (la *liveAttempt) handle(in wsInbound) {
	switch in.Type {
	case "start":
		la.start(in)
	case "input":
		la.input(in.Transcript)
	case "restart":
		la.restart()
	default:
		la.fail("unsupported message type")
	}
}

func (la *liveAttempt) start(in wsInbound) {
	difficulty, err := levels.ParseDifficulty(in.Difficulty)
	if err != nil {
		la.fail(err.Error())
		return
	}
	level, err := la.srv.Catalog.Get(difficulty, in.LevelNumber)
	if err != nil {
		la.fail(err.Error())
		return
	}
	if in.Username != "" {
		if _, err := la.srv.Users.UserByUsername(la.ctx, in.Username); err != nil {
			la.fail(toAppError(err).Message)
			return
		}
		doc, err := la.srv.Tracker.Load(la.ctx, in.Username)
		if err != nil {
			la.fail("failed to load progress")
			return
		}
		if progress.Locked(doc, level) {
			la.fail("level is locked until every easy, medium and hard level is complete")
			return
		}
	}

	la.mu.Lock()
	defer la.mu.Unlock()
	la.stopTicker()
	la.username = in.Username
	la.att = attempt.New(level, la.srv.clock())
	la.begin()
}

// begin starts the current attempt and its ticker. Callers hold mu.
func (la *liveAttempt) begin() {
	la.att.Start()
	la.emit(wsOutbound{
		Type:      "started",
		AttemptID: la.att.ID(),
		TimeLimit: la.att.Level().Thresholds.TimeLimitSeconds,
		Text:      la.att.Level().Text,
	})
	stop := make(chan struct{})
	la.stopTick = stop
	la.wg.Add(1)
	go la.tickLoop(la.att, stop)
}

func (la *liveAttempt) tickLoop(att *attempt.Attempt, stop chan struct{}) {
	defer la.wg.Done()
	ticker := time.NewTicker(la.srv.tickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-la.done:
			return
		case <-ticker.C:
		}
		la.mu.Lock()
		if stopped(stop) || att.State() != attempt.Running {
			la.mu.Unlock()
			return
		}
		if att.Tick() {
			la.finish()
			la.mu.Unlock()
			return
		}
		remaining := att.Remaining()
		la.emit(wsOutbound{Type: "tick", Remaining: &remaining})
		la.mu.Unlock()
	}
}

func (la *liveAttempt) input(transcript string) {
	la.mu.Lock()
	defer la.mu.Unlock()
	if la.att == nil || la.att.State() != attempt.Running {
		la.fail("no attempt is running")
		return
	}
	if la.att.RecordKeystroke(transcript) {
		la.emit(wsOutbound{Type: "match"})
		la.finish()
	}
}

func (la *liveAttempt) restart() {
	la.mu.Lock()
	defer la.mu.Unlock()
	if la.att == nil {
		la.fail("no attempt to restart")
		return
	}
	la.stopTicker()
	la.att.Restart()
	la.begin()
}

// finish scores the attempt once. Callers hold mu.
func (la *liveAttempt) finish() {
	res, ok := la.att.End()
	if !ok {
		return
	}
	la.stopTicker()

	level := la.att.Level()
	resp := buildScoreResponse(level, la.att.Transcript(), res, la.att.Remaining(), la.att.FinishedTyping())
	if res.Passed && la.username != "" {
		if warn := la.srv.Tracker.OnLevelPassed(la.ctx, la.username, level, la.att.Stats()); warn != nil {
			resp.Warning = "Progress could not be saved: " + warn.Err.Error()
		}
	}
	la.log.Info("attempt finished",
		slog.String("attempt", la.att.ID()),
		slog.String("user", la.username),
		slog.String("level", string(level.Difficulty)+"/"+level.Key()),
		slog.Int("wpm", res.WPM),
		slog.Float64("accuracy", res.Accuracy),
		slog.Bool("passed", res.Passed),
	)
	la.emit(wsOutbound{
		Type:      "result",
		AttemptID: la.att.ID(),
		Result:    &res,
		Checklist: resp.Checklist,
		Feedback:  resp.Feedback,
		Headline:  resp.Headline,
		Mistakes:  resp.Mistakes,
		Warning:   resp.Warning,
	})
}

func stopped(stop chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// stopTicker ends the countdown goroutine of the current attempt. Callers hold mu.
func (la *liveAttempt) stopTicker() {
	if la.stopTick != nil {
		close(la.stopTick)
		la.stopTick = nil
	}
}
