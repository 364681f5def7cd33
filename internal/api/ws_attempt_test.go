package api_test

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typechallenge/internal/model"
)

type wsMessage struct {
	Type      string              `json:"type"`
	AttemptID string              `json:"attemptId"`
	TimeLimit int                 `json:"timeLimit"`
	Remaining *int                `json:"remaining"`
	Result    model.AttemptResult `json:"result"`
	Checklist []map[string]any    `json:"checklist"`
	Feedback  []string            `json:"feedback"`
	Headline  string              `json:"headline"`
	Warning   string              `json:"warning"`
	Message   string              `json:"message"`
}

func (s *APISuite) dialAttempt() *websocket.Conn {
	u := "ws" + strings.TrimPrefix(s.http.URL, "http") + "/ws/attempt"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *APISuite) readUntil(conn *websocket.Conn, want string) (wsMessage, []string) {
	var seen []string
	for i := 0; i < 200; i++ {
		var msg wsMessage
		s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		s.Require().NoError(conn.ReadJSON(&msg))
		seen = append(seen, msg.Type)
		if msg.Type == want {
			return msg, seen
		}
	}
	s.FailNow("message not received", want)
	return wsMessage{}, seen
}

func (s *APISuite) TestLiveAttemptEarlyMatchRecordsProgress() {
	s.server.TickInterval = 50 * time.Millisecond
	username := s.register("Erin", "erin@example.com")
	conn := s.dialAttempt()

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "start", "username": username, "difficulty": "easy", "levelNumber": 1}))
	started, _ := s.readUntil(conn, "started")
	s.Assert().NotEmpty(started.AttemptID)
	s.Assert().Equal(20, started.TimeLimit)

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "input", "transcript": "The sun is"}))
	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "input", "transcript": easyOneText}))
	result, seen := s.readUntil(conn, "result")
	s.Assert().Contains(seen, "match")
	s.Assert().True(result.Result.Passed)
	s.Assert().True(result.Result.CompletedText)
	s.Assert().Equal(started.AttemptID, result.AttemptID)
	s.Assert().Len(result.Checklist, 5)
	s.Assert().Empty(result.Warning)

	doc, err := s.tracker.Load(context.Background(), username)
	s.Require().NoError(err)
	s.Assert().True(doc.Levels[model.Easy]["level1"].Completed)
}

func (s *APISuite) TestLiveAttemptTimeout() {
	s.server.TickInterval = 5 * time.Millisecond
	conn := s.dialAttempt()

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "start", "difficulty": "easy", "levelNumber": 1}))
	s.readUntil(conn, "started")
	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "input", "transcript": "The sun"}))

	result, seen := s.readUntil(conn, "result")
	s.Assert().Contains(seen, "tick")
	s.Assert().NotContains(seen, "match")
	s.Assert().False(result.Result.Passed)
	s.Assert().False(result.Result.FinishedInTime)
	s.Assert().Equal(float64(20), result.Result.ElapsedSeconds)
	s.Assert().Contains(result.Feedback, "❌ Time ran out")

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "input", "transcript": easyOneText}))
	errMsg, _ := s.readUntil(conn, "error")
	s.Assert().Equal("no attempt is running", errMsg.Message)
}

func (s *APISuite) TestLiveAttemptRestart() {
	s.server.TickInterval = time.Hour
	conn := s.dialAttempt()

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "start", "difficulty": "easy", "levelNumber": 2}))
	first, _ := s.readUntil(conn, "started")
	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "input", "transcript": "A small"}))
	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "restart"}))
	second, _ := s.readUntil(conn, "started")
	s.Assert().Equal(first.AttemptID, second.AttemptID)
	s.Assert().Equal(30, second.TimeLimit)
}

func (s *APISuite) TestLiveAttemptRejectsLockedAndUnknown() {
	username := s.register("Finn", "finn@example.com")
	conn := s.dialAttempt()

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "start", "username": username, "difficulty": "impossible", "levelNumber": 1}))
	msg, _ := s.readUntil(conn, "error")
	s.Assert().Contains(msg.Message, "locked")

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "start", "difficulty": "hard", "levelNumber": 7}))
	msg, _ = s.readUntil(conn, "error")
	s.Assert().Contains(msg.Message, "unknown level")

	s.Require().NoError(conn.WriteJSON(map[string]any{"type": "dance"}))
	msg, _ = s.readUntil(conn, "error")
	s.Assert().Equal("unsupported message type", msg.Message)
}
