package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/kingrea/daybreak/internal/config"
	"github.com/kingrea/daybreak/internal/task"
)

var testCategories = []config.JobTemplate{
	{Name: "Deep Work", Description: "Focused project time"},
	{Name: "Admin", Description: "Email and errands"},
}

func answer(t *testing.T, s *Session, text string) {
	t.Helper()
	if err := s.Answer(text); err != nil {
		t.Fatalf("answer %q at step %d: %v", text, s.Step().Kind, err)
	}
}

func TestSessionCollectsJobsPerCategory(t *testing.T) {
	s := NewSession(testCategories, nil)

	if s.Step().Kind != StepGoal || s.Step().Category.Name != "Deep Work" {
		t.Fatalf("first step = %+v", s.Step())
	}
	answer(t, s, "finish the parser")
	answer(t, s, "no") // no sub-tasks
	answer(t, s, "no") // no chat

	if s.Step().Category.Name != "Admin" {
		t.Fatalf("second category = %+v", s.Step())
	}
	answer(t, s, "") // nothing planned for admin

	if s.Step().Kind != StepGenerate {
		t.Fatalf("step = %d, want StepGenerate", s.Step().Kind)
	}
	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0].Name != "Deep Work" || jobs[0].Goal != "finish the parser" {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestSessionNestsSubTasks(t *testing.T) {
	s := NewSession(testCategories[:1], nil)

	answer(t, s, "finish the parser")
	answer(t, s, "yes")
	answer(t, s, "outline")
	answer(t, s, "sketch the approach")
	// Now inside "outline": nest one level deeper.
	answer(t, s, "y")
	answer(t, s, "review notes")
	answer(t, s, "re-read yesterday's notes")
	answer(t, s, "no") // done with "review notes"
	answer(t, s, "no") // done with "outline"
	answer(t, s, "no") // done with the top-level job
	answer(t, s, "no") // no chat

	if s.Step().Kind != StepGenerate {
		t.Fatalf("step = %d, want StepGenerate", s.Step().Kind)
	}
	root := s.Jobs()[0]
	if len(root.SubJobs) != 1 || root.SubJobs[0].Name != "outline" {
		t.Fatalf("sub jobs = %+v", root.SubJobs)
	}
	nested := root.SubJobs[0].SubJobs
	if len(nested) != 1 || nested[0].Name != "review notes" {
		t.Fatalf("nested sub jobs = %+v", nested)
	}
}

func TestSessionAllCategoriesSkippedEndsDone(t *testing.T) {
	s := NewSession(testCategories, nil)
	answer(t, s, "")
	answer(t, s, "")
	if s.Step().Kind != StepDone {
		t.Fatalf("step = %d, want StepDone when nothing was planned", s.Step().Kind)
	}
}

func TestSessionCarryOver(t *testing.T) {
	previous := &task.Plan{
		Date: "2026-03-01",
		Jobs: []*task.Job{{Name: "Deep Work", Goal: "finish parser"}, {Name: "Admin", Goal: "expense report"}},
		Done: map[string]bool{"Deep Work": true},
	}
	s := NewSession(testCategories, previous)

	step := s.Step()
	if step.Kind != StepCarryOver || step.Job.Name != "Admin" {
		t.Fatalf("first step = %+v", step)
	}
	answer(t, s, "yes")
	answer(t, s, "") // skip Deep Work category
	answer(t, s, "") // skip Admin category

	if s.Step().Kind != StepGenerate {
		t.Fatalf("step = %d, want StepGenerate", s.Step().Kind)
	}
	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0].Name != "Admin" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if jobs[0].CarriedFrom != "2026-03-01" {
		t.Fatalf("carried from = %q", jobs[0].CarriedFrom)
	}
	// The carried copy must not alias the previous plan's tree.
	jobs[0].Goal = "changed"
	if previous.Jobs[1].Goal != "expense report" {
		t.Fatalf("carry-over shares storage with the previous plan")
	}
}

func TestSessionDeclinedCarryOverIsDropped(t *testing.T) {
	previous := &task.Plan{
		Date: "2026-03-01",
		Jobs: []*task.Job{{Name: "Admin", Goal: "expense report"}},
	}
	s := NewSession(testCategories[:1], previous)
	answer(t, s, "no")
	answer(t, s, "write tests")
	answer(t, s, "no")
	answer(t, s, "no")
	if len(s.Jobs()) != 1 || s.Jobs()[0].Name != "Deep Work" {
		t.Fatalf("jobs = %+v", s.Jobs())
	}
}

func TestSessionChatNotesAttachToJob(t *testing.T) {
	s := NewSession(testCategories[:1], nil)
	answer(t, s, "finish the parser")
	answer(t, s, "no")
	answer(t, s, "yes")
	if s.Step().Kind != StepChat {
		t.Fatalf("step = %d, want StepChat", s.Step().Kind)
	}
	s.RecordChat("how long will this take?", "plan for two hours")
	answer(t, s, "") // end the chat

	if s.Step().Kind != StepGenerate {
		t.Fatalf("step = %d, want StepGenerate", s.Step().Kind)
	}
	notes := s.Jobs()[0].ChatNotes
	if len(notes) != 1 || notes[0].Assistant != "plan for two hours" {
		t.Fatalf("chat notes = %+v", notes)
	}
}

func TestSessionRefineLoop(t *testing.T) {
	s := NewSession(testCategories[:1], nil)
	answer(t, s, "finish the parser")
	answer(t, s, "no")
	answer(t, s, "no")

	s.SetDraft("- [ ] draft one")
	if s.Step().Kind != StepRefineAsk {
		t.Fatalf("step = %d, want StepRefineAsk", s.Step().Kind)
	}
	answer(t, s, "no")
	if s.Step().Kind != StepRefineFeedback {
		t.Fatalf("step = %d, want StepRefineFeedback", s.Step().Kind)
	}
	s.ApplyRefinement("add a lunch break", "- [ ] draft two")
	answer(t, s, "yes")
	if s.Step().Kind != StepDone {
		t.Fatalf("step = %d, want StepDone", s.Step().Kind)
	}

	plan := s.BuildPlan("2026-03-02", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	if plan.Content != "- [ ] draft two" {
		t.Fatalf("content = %q", plan.Content)
	}
	if len(plan.Refinements) != 1 || plan.Refinements[0].PreviousDraft != "- [ ] draft one" {
		t.Fatalf("refinements = %+v", plan.Refinements)
	}
}

func TestSessionInvalidYesNoReprompts(t *testing.T) {
	s := NewSession(testCategories[:1], nil)
	answer(t, s, "finish the parser")

	err := s.Answer("maybe")
	var input *InputError
	if !errors.As(err, &input) {
		t.Fatalf("error = %v, want InputError", err)
	}
	// State is unchanged; a valid answer still works.
	if s.Step().Kind != StepAskSub {
		t.Fatalf("step = %d, want StepAskSub after bad input", s.Step().Kind)
	}
	answer(t, s, "no")
	answer(t, s, "no")
	if s.Step().Kind != StepGenerate {
		t.Fatalf("step = %d, want StepGenerate", s.Step().Kind)
	}
}

func TestSessionGenerateFailureLeavesStateIntact(t *testing.T) {
	s := NewSession(testCategories[:1], nil)
	answer(t, s, "finish the parser")
	answer(t, s, "no")
	answer(t, s, "no")

	// The caller's AI call failed; the session never saw a draft and
	// the collected jobs are still there for a retry.
	if s.Step().Kind != StepGenerate {
		t.Fatalf("step = %d, want StepGenerate", s.Step().Kind)
	}
	if len(s.Jobs()) != 1 {
		t.Fatalf("jobs = %+v", s.Jobs())
	}
	s.SetDraft("- [ ] retried")
	if s.Draft() != "- [ ] retried" {
		t.Fatalf("draft = %q", s.Draft())
	}
}
