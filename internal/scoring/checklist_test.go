package scoring

import (
	"strings"
	"testing"

	"github.com/verte-zerg/typechallenge/internal/model"
)

func TestChecklistReportsEachCondition(t *testing.T) {
	res := model.AttemptResult{WPM: 40, Accuracy: 95, Mistakes: 12, CompletedText: true, FinishedInTime: true}
	reqs := Checklist(res, hard1)
	if len(reqs) != 5 {
		t.Fatalf("expected 5 requirements, got %d", len(reqs))
	}
	want := map[RequirementKind]bool{
		RequireCompletion: true,
		RequireSpeed:      false,
		RequireAccuracy:   true,
		RequireMistakes:   false,
		RequireTime:       true,
	}
	for _, r := range reqs {
		if r.Passed != want[r.Kind] {
			t.Fatalf("%s: expected passed=%v", r.Kind, want[r.Kind])
		}
	}
	if reqs[1].Required != 50 || reqs[1].Achieved != 40 {
		t.Fatalf("unexpected speed row: %+v", reqs[1])
	}
}

func TestChecklistBoundaryValuesPass(t *testing.T) {
	res := model.AttemptResult{WPM: 50, Accuracy: 92, Mistakes: 10, CompletedText: true, FinishedInTime: true}
	for _, r := range Checklist(res, hard1) {
		if !r.Passed {
			t.Fatalf("%s: expected boundary value to pass", r.Kind)
		}
	}
}

func TestFeedbackLines(t *testing.T) {
	res := model.AttemptResult{WPM: 42, Accuracy: 90.5, Mistakes: 11, CompletedText: false, FinishedInTime: false}
	lines := Feedback(res, hard1, 0, false)
	joined := strings.Join(lines, "\n")
	for _, needle := range []string{
		"Complete the full paragraph",
		"Speed: 42 WPM (need 50+ WPM)",
		"Accuracy: 90.5% (need 92%+)",
		"Mistakes: 11 (max 10 allowed)",
		"Time ran out",
	} {
		if !strings.Contains(joined, needle) {
			t.Fatalf("feedback missing %q:\n%s", needle, joined)
		}
	}
}

func TestFeedbackFinishedLines(t *testing.T) {
	res := model.AttemptResult{WPM: 80, Accuracy: 99, CompletedText: true, FinishedInTime: true, Passed: true}
	if got := Feedback(res, hard1, 12, false)[4]; !strings.Contains(got, "Finished with 12s remaining") {
		t.Fatalf("unexpected time line: %q", got)
	}
	if got := Feedback(res, hard1, 12, true)[4]; !strings.Contains(got, "Completed before time ran out") {
		t.Fatalf("unexpected time line: %q", got)
	}
}

func TestHeadline(t *testing.T) {
	cases := []struct {
		res  model.AttemptResult
		want string
	}{
		{model.AttemptResult{Passed: true, CompletedText: true}, "Level completed"},
		{model.AttemptResult{CompletedText: true, WPM: 10, Accuracy: 99, Mistakes: 0, FinishedInTime: true}, "Almost there"},
		{model.AttemptResult{CompletedText: true, WPM: 10, Accuracy: 50, Mistakes: 0, FinishedInTime: false}, "Good progress"},
		{model.AttemptResult{WPM: 95}, "Amazing speed"},
		{model.AttemptResult{WPM: 75}, "Great speed"},
		{model.AttemptResult{WPM: 45}, "Nice start"},
		{model.AttemptResult{WPM: 5}, "Keep practicing"},
	}
	for _, c := range cases {
		if got := Headline(c.res, hard1); !strings.Contains(got, c.want) {
			t.Fatalf("expected %q in %q", c.want, got)
		}
	}
}

func TestWordDiffs(t *testing.T) {
	diffs := WordDiffs("the cat  sat", "the dog")
	if len(diffs) != 3 {
		t.Fatalf("expected 3 diffs, got %d", len(diffs))
	}
	if !diffs[0].Correct || diffs[1].Correct || diffs[2].Correct {
		t.Fatalf("unexpected diff flags: %+v", diffs)
	}
	if diffs[1].Typed != "dog" || diffs[2].Typed != "" {
		t.Fatalf("unexpected typed words: %+v", diffs)
	}
}
