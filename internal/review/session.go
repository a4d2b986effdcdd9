// internal/review/session.go
//
// The evening review workflow as a step machine, mirroring the planner:
// the front end renders steps, feeds answers in, and runs the summary
// generation itself. Jobs are reviewed in pre-order, sub-jobs included.

package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/daybreak/internal/task"
)

// StepKind identifies what the review session is waiting for.
type StepKind int

const (
	// StepStatus asks whether the current job got done (yes/no/partial).
	StepStatus StepKind = iota
	// StepQuality asks how a completed job went.
	StepQuality
	// StepProblem asks what got in the way of an unfinished job.
	StepProblem
	// StepSummarize means all reviews are in; the caller should generate
	// the summary and hand it back via SetSummary.
	StepSummarize
	// StepChat is an open reflection chat after the summary.
	StepChat
	// StepDone means the review is finished.
	StepDone
)

// Step describes the current state for the front end to render.
type Step struct {
	Kind StepKind
	Job  *task.Job
}

// InputError reports an answer the current step cannot accept.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return "review: " + e.Msg }

// Session walks every job in the plan and collects its review.
type Session struct {
	plan  *task.Plan
	queue []*task.Job
	idx   int

	kind    StepKind
	reviews []task.Review
	summary string
	chat    []task.ChatNote
}

// NewSession starts a review over the day's plan.
func NewSession(plan *task.Plan) *Session {
	s := &Session{plan: plan}
	_ = task.Walk(plan.Jobs, func(job *task.Job, _ int) error {
		s.queue = append(s.queue, job)
		return nil
	})
	if len(s.queue) == 0 {
		s.kind = StepSummarize
	}
	return s
}

// Step returns the current step descriptor.
func (s *Session) Step() Step {
	step := Step{Kind: s.kind}
	if s.kind == StepStatus || s.kind == StepQuality || s.kind == StepProblem {
		step.Job = s.queue[s.idx]
	}
	return step
}

// Answer feeds user input to the current step and advances the machine.
func (s *Session) Answer(text string) error {
	text = strings.TrimSpace(text)
	switch s.kind {
	case StepStatus:
		status, ok := task.ParseStatus(strings.ToLower(text))
		if !ok {
			return &InputError{Msg: fmt.Sprintf("answer yes, no, or partial, got %q", text)}
		}
		s.queue[s.idx].Status = status
		if status == task.StatusDone {
			s.kind = StepQuality
		} else {
			s.kind = StepProblem
		}
		return nil

	case StepQuality:
		quality, ok := task.ParseQuality(strings.ToLower(text))
		if !ok {
			return &InputError{Msg: fmt.Sprintf("answer excellent, good, or okay, got %q", text)}
		}
		s.queue[s.idx].Quality = quality
		s.finishJob()
		return nil

	case StepProblem:
		// Free text; empty means no note.
		s.queue[s.idx].Problem = text
		s.finishJob()
		return nil

	case StepChat:
		if text == "" {
			s.kind = StepDone
			return nil
		}
		return &InputError{Msg: "chat turns go through RecordChat"}

	default:
		return &InputError{Msg: "nothing to answer right now"}
	}
}

func (s *Session) finishJob() {
	job := s.queue[s.idx]
	s.reviews = append(s.reviews, task.Review{
		JobName: job.Name,
		Status:  job.Status,
		Quality: job.Quality,
		Problem: job.Problem,
	})
	s.idx++
	if s.idx >= len(s.queue) {
		s.kind = StepSummarize
	} else {
		s.kind = StepStatus
	}
}

// Reviews returns the reviews collected so far.
func (s *Session) Reviews() []task.Review { return s.reviews }

// SetSummary installs the generated summary and opens the reflection chat.
func (s *Session) SetSummary(text string) {
	s.summary = text
	s.kind = StepChat
}

// Summary returns the generated summary text.
func (s *Session) Summary() string { return s.summary }

// RecordChat stores one completed reflection exchange. The session stays
// in StepChat; an empty Answer ends the conversation.
func (s *Session) RecordChat(user, assistant string) {
	s.chat = append(s.chat, task.ChatNote{User: user, Assistant: assistant})
}

// BuildLog assembles the finished log record. The plan is deep-copied so
// the log snapshot never aliases the live plan.
func (s *Session) BuildLog(date string, createdAt time.Time) *task.Log {
	return &task.Log{
		Date:      date,
		CreatedAt: createdAt,
		Plan:      task.ClonePlan(s.plan),
		Reviews:   s.reviews,
		Summary:   s.summary,
		Chat:      s.chat,
	}
}
