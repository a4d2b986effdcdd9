// internal/planner/session.go
//
// The morning planning workflow as a step machine. The TUI (or any other
// front end) asks for the current Step, feeds answers back in, and runs
// the AI calls itself; the session never touches the network. Failed
// generations leave the session where it was so the caller can retry.

package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/daybreak/internal/config"
	"github.com/kingrea/daybreak/internal/task"
)

// StepKind identifies what the session is waiting for.
type StepKind int

const (
	// StepCarryOver offers one unfinished job from the previous plan.
	StepCarryOver StepKind = iota
	// StepGoal asks what to do for the current job category.
	StepGoal
	// StepAskSub asks whether to add a sub-task under the current job.
	StepAskSub
	// StepSubName asks for the new sub-task's name.
	StepSubName
	// StepSubDesc asks for the new sub-task's description.
	StepSubDesc
	// StepAskChat asks whether to discuss the category's job with the AI.
	StepAskChat
	// StepChat is an open chat turn about the current job.
	StepChat
	// StepGenerate means all inputs are collected; the caller should run
	// the AI and hand the draft back via SetDraft.
	StepGenerate
	// StepRefineAsk asks whether to accept the current draft.
	StepRefineAsk
	// StepRefineFeedback asks what to change about the draft.
	StepRefineFeedback
	// StepDone means the session is finished.
	StepDone
)

// Step describes the current state for the front end to render.
type Step struct {
	Kind     StepKind
	Category config.JobTemplate
	// Job is the job the step concerns: the carry-over candidate, the
	// sub-task parent, or the chat subject.
	Job *task.Job
}

// InputError reports an answer the current step cannot accept. The front
// end re-prompts locally; the session state is unchanged.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return "planner: " + e.Msg }

// Session collects the morning's jobs category by category.
type Session struct {
	categories []config.JobTemplate
	carryOver  []*task.Job
	carryIdx   int
	catIdx     int

	jobs []*task.Job
	// subStack tracks the job chain sub-task prompts descend through.
	subStack       []*task.Job
	pendingSubName string

	kind        StepKind
	draft       string
	refinements []task.Refinement
}

// NewSession starts a planning session over the configured categories.
// Unfinished jobs from the previous plan, if any, are offered for
// carry-over first.
func NewSession(categories []config.JobTemplate, previous *task.Plan) *Session {
	s := &Session{categories: categories}
	if previous != nil {
		for _, job := range previous.Unfinished() {
			carried := task.Clone([]*task.Job{job})[0]
			carried.Status = task.StatusUnset
			carried.Quality = task.QualityUnset
			carried.Problem = ""
			carried.CarriedFrom = previous.Date
			s.carryOver = append(s.carryOver, carried)
		}
	}
	if len(s.carryOver) > 0 {
		s.kind = StepCarryOver
	} else {
		s.enterCategoryOrFinish()
	}
	return s
}

// Step returns the current step descriptor.
func (s *Session) Step() Step {
	step := Step{Kind: s.kind}
	switch s.kind {
	case StepCarryOver:
		step.Job = s.carryOver[s.carryIdx]
	case StepGoal:
		step.Category = s.categories[s.catIdx]
	case StepAskSub, StepSubName, StepSubDesc:
		step.Category = s.categories[s.catIdx]
		step.Job = s.subStack[len(s.subStack)-1]
	case StepAskChat, StepChat:
		step.Category = s.categories[s.catIdx]
		step.Job = s.currentCategoryJob()
	}
	return step
}

// Answer feeds user input to the current step and advances the machine.
func (s *Session) Answer(text string) error {
	text = strings.TrimSpace(text)
	switch s.kind {
	case StepCarryOver:
		yes, err := parseYesNo(text)
		if err != nil {
			return err
		}
		if yes {
			s.jobs = append(s.jobs, s.carryOver[s.carryIdx])
		}
		s.carryIdx++
		if s.carryIdx >= len(s.carryOver) {
			s.enterCategoryOrFinish()
		}
		return nil

	case StepGoal:
		if text == "" {
			// Nothing planned for this category today.
			s.advanceCategory()
			return nil
		}
		cat := s.categories[s.catIdx]
		job := &task.Job{Name: cat.Name, Description: cat.Description, Goal: text}
		s.jobs = append(s.jobs, job)
		s.subStack = []*task.Job{job}
		s.kind = StepAskSub
		return nil

	case StepAskSub:
		yes, err := parseYesNo(text)
		if err != nil {
			return err
		}
		if yes {
			s.kind = StepSubName
			return nil
		}
		// Done with this job; back up to its parent, or on to chat.
		s.subStack = s.subStack[:len(s.subStack)-1]
		if len(s.subStack) == 0 {
			s.kind = StepAskChat
		}
		return nil

	case StepSubName:
		if text == "" {
			s.kind = StepAskSub
			return nil
		}
		s.pendingSubName = text
		s.kind = StepSubDesc
		return nil

	case StepSubDesc:
		parent := s.subStack[len(s.subStack)-1]
		child := parent.AddSub(s.pendingSubName, text)
		s.pendingSubName = ""
		s.subStack = append(s.subStack, child)
		s.kind = StepAskSub
		return nil

	case StepAskChat:
		yes, err := parseYesNo(text)
		if err != nil {
			return err
		}
		if yes {
			s.kind = StepChat
		} else {
			s.advanceCategory()
		}
		return nil

	case StepChat:
		if text == "" {
			s.advanceCategory()
			return nil
		}
		return &InputError{Msg: "chat turns go through RecordChat"}

	case StepRefineAsk:
		yes, err := parseYesNo(text)
		if err != nil {
			return err
		}
		if yes {
			s.kind = StepDone
		} else {
			s.kind = StepRefineFeedback
		}
		return nil

	case StepRefineFeedback:
		if text == "" {
			// Changed their mind; keep the draft as is.
			s.kind = StepRefineAsk
			return nil
		}
		return &InputError{Msg: "refinements go through ApplyRefinement"}

	default:
		return &InputError{Msg: "nothing to answer right now"}
	}
}

// RecordChat stores one completed chat exchange on the current job. The
// session stays in StepChat; an empty Answer ends the conversation.
func (s *Session) RecordChat(user, assistant string) {
	job := s.currentCategoryJob()
	if job == nil {
		return
	}
	job.ChatNotes = append(job.ChatNotes, task.ChatNote{User: user, Assistant: assistant})
}

// SetDraft installs the generated plan text and moves to the accept step.
func (s *Session) SetDraft(draft string) {
	s.draft = draft
	s.kind = StepRefineAsk
}

// ApplyRefinement records one refine round and installs the new draft.
func (s *Session) ApplyRefinement(feedback, draft string) {
	s.refinements = append(s.refinements, task.Refinement{
		Feedback:      feedback,
		PreviousDraft: s.draft,
	})
	s.draft = draft
	s.kind = StepRefineAsk
}

// Jobs returns the jobs collected so far.
func (s *Session) Jobs() []*task.Job { return s.jobs }

// Draft returns the current plan text.
func (s *Session) Draft() string { return s.draft }

// BuildPlan assembles the finished plan record.
func (s *Session) BuildPlan(date string, createdAt time.Time) *task.Plan {
	return &task.Plan{
		Date:        date,
		CreatedAt:   createdAt,
		Jobs:        s.jobs,
		Content:     s.draft,
		Refinements: s.refinements,
	}
}

func (s *Session) currentCategoryJob() *task.Job {
	if len(s.jobs) == 0 {
		return nil
	}
	return s.jobs[len(s.jobs)-1]
}

func (s *Session) advanceCategory() {
	s.subStack = nil
	s.catIdx++
	s.enterCategoryOrFinish()
}

func (s *Session) enterCategoryOrFinish() {
	if s.catIdx < len(s.categories) {
		s.kind = StepGoal
		return
	}
	if len(s.jobs) == 0 {
		s.kind = StepDone
		return
	}
	s.kind = StepGenerate
}

func parseYesNo(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "y", "yes":
		return true, nil
	case "", "n", "no":
		return false, nil
	}
	return false, &InputError{Msg: fmt.Sprintf("answer yes or no, got %q", text)}
}
