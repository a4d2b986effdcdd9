package review

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/daybreak/internal/task"
)

func twoJobPlan() *task.Plan {
	root := &task.Job{Name: "deep work", Goal: "finish parser"}
	root.AddSub("outline", "sketch approach")
	root.AddSub("tests", "cover the edge cases")
	return &task.Plan{
		Date: "2026-03-02",
		Jobs: []*task.Job{root, {Name: "admin", Goal: "expense report"}},
	}
}

func TestChecklistFlattensPreOrder(t *testing.T) {
	c := NewChecklist(twoJobPlan())
	rows := c.Rows()
	wantNames := []string{"deep work", "outline", "tests", "admin"}
	wantDepths := []int{0, 1, 1, 0}
	if len(rows) != len(wantNames) {
		t.Fatalf("rows = %d, want %d", len(rows), len(wantNames))
	}
	for i, row := range rows {
		if row.Job.Name != wantNames[i] || row.Depth != wantDepths[i] {
			t.Fatalf("row %d = %s depth %d, want %s depth %d",
				i, row.Job.Name, row.Depth, wantNames[i], wantDepths[i])
		}
	}
}

func TestChecklistToggleAndProgress(t *testing.T) {
	plan := twoJobPlan()
	c := NewChecklist(plan)

	c.Toggle(1) // outline
	c.Toggle(3) // admin
	done, total := c.Progress()
	if done != 2 || total != 4 {
		t.Fatalf("progress = %d/%d, want 2/4", done, total)
	}
	if !c.Done(1) || c.Done(0) {
		t.Fatalf("done marks wrong: row0=%v row1=%v", c.Done(0), c.Done(1))
	}

	c.Toggle(1)
	if c.Done(1) {
		t.Fatalf("toggle did not clear the mark")
	}

	now := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	c.Finish(now)
	if !plan.LastChecked.Equal(now) {
		t.Fatalf("last checked = %v", plan.LastChecked)
	}
	if !plan.Done["admin"] {
		t.Fatalf("marks must land in the plan's Done map")
	}
}

func TestReviewSessionWalksEveryJob(t *testing.T) {
	plan := twoJobPlan()
	s := NewSession(plan)

	// deep work: done, excellent
	if s.Step().Job.Name != "deep work" {
		t.Fatalf("first job = %q", s.Step().Job.Name)
	}
	mustAnswer(t, s, "yes")
	if s.Step().Kind != StepQuality {
		t.Fatalf("step = %d, want StepQuality after yes", s.Step().Kind)
	}
	mustAnswer(t, s, "excellent")

	// outline: partial with a note
	if s.Step().Job.Name != "outline" {
		t.Fatalf("second job = %q", s.Step().Job.Name)
	}
	mustAnswer(t, s, "partial")
	if s.Step().Kind != StepProblem {
		t.Fatalf("step = %d, want StepProblem after partial", s.Step().Kind)
	}
	mustAnswer(t, s, "meeting ran over")

	// tests: not done, no note
	mustAnswer(t, s, "no")
	mustAnswer(t, s, "")

	// admin: done, good
	mustAnswer(t, s, "yes")
	mustAnswer(t, s, "good")

	if s.Step().Kind != StepSummarize {
		t.Fatalf("step = %d, want StepSummarize", s.Step().Kind)
	}
	reviews := s.Reviews()
	if len(reviews) != 4 {
		t.Fatalf("reviews = %d, want 4", len(reviews))
	}
	if reviews[1].Status != task.StatusPartial || reviews[1].Problem != "meeting ran over" {
		t.Fatalf("outline review = %+v", reviews[1])
	}
	if plan.Jobs[0].Quality != task.QualityExcellent {
		t.Fatalf("review did not land on the job tree")
	}
}

func TestReviewSessionRejectsBadStatus(t *testing.T) {
	s := NewSession(twoJobPlan())
	err := s.Answer("kinda")
	var input *InputError
	if !errors.As(err, &input) {
		t.Fatalf("error = %v, want InputError", err)
	}
	if s.Step().Kind != StepStatus {
		t.Fatalf("state changed on bad input")
	}
}

func TestReviewSessionBuildsLog(t *testing.T) {
	plan := twoJobPlan()
	s := NewSession(plan)
	for _, answer := range []string{"yes", "good", "no", "", "no", "", "no", ""} {
		mustAnswer(t, s, answer)
	}
	s.SetSummary("a mixed day")
	if s.Step().Kind != StepChat {
		t.Fatalf("step = %d, want StepChat after summary", s.Step().Kind)
	}
	s.RecordChat("what should I change?", "protect the afternoon block")
	mustAnswer(t, s, "")
	if s.Step().Kind != StepDone {
		t.Fatalf("step = %d, want StepDone", s.Step().Kind)
	}

	now := time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)
	log := s.BuildLog("2026-03-02", now)
	if log.Summary != "a mixed day" || len(log.Reviews) != 4 || len(log.Chat) != 1 {
		t.Fatalf("log = %+v", log)
	}
	// The embedded plan is a snapshot.
	log.Plan.Jobs[0].Name = "changed"
	if plan.Jobs[0].Name != "deep work" {
		t.Fatalf("log plan aliases the live plan")
	}
}

func TestReviewSessionEmptyPlanGoesStraightToSummary(t *testing.T) {
	s := NewSession(&task.Plan{Date: "2026-03-02"})
	if s.Step().Kind != StepSummarize {
		t.Fatalf("step = %d, want StepSummarize", s.Step().Kind)
	}

	// Typing here is not an answer; the message is user-facing.
	err := s.Answer("hello")
	var input *InputError
	if !errors.As(err, &input) {
		t.Fatalf("error = %v, want InputError", err)
	}
	if strings.Contains(input.Msg, "step") {
		t.Fatalf("message leaks internal state: %q", input.Msg)
	}
}

func mustAnswer(t *testing.T, s *Session, text string) {
	t.Helper()
	if err := s.Answer(text); err != nil {
		t.Fatalf("answer %q: %v", text, err)
	}
}
