// internal/task/task.go
//
// Core data model for daybreak: the Job tree plus the Plan, Log, and
// FeedbackEntry records that get persisted per day. A Job owns its sub-jobs
// exclusively, so the structure is always a strict tree.

package task

import "time"

// Status records whether a job got done during the evening review.
type Status string

const (
	StatusUnset   Status = ""
	StatusDone    Status = "yes"
	StatusNotDone Status = "no"
	StatusPartial Status = "partial"
)

// ParseStatus maps review input to a Status, reporting whether it was valid.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusDone, StatusNotDone, StatusPartial:
		return Status(value), true
	}
	return StatusUnset, false
}

// Quality rates how a completed job went.
type Quality string

const (
	QualityUnset     Quality = ""
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityOkay      Quality = "okay"
)

// ParseQuality maps review input to a Quality, reporting whether it was valid.
func ParseQuality(value string) (Quality, bool) {
	switch Quality(value) {
	case QualityExcellent, QualityGood, QualityOkay:
		return Quality(value), true
	}
	return QualityUnset, false
}

// ChatNote is one user/assistant exchange kept alongside a job or log.
type ChatNote struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Job is one unit of planned activity. Sub-jobs nest to arbitrary depth.
type Job struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Goal        string     `json:"goal,omitempty"`
	SubJobs     []*Job     `json:"sub_jobs,omitempty"`
	ChatNotes   []ChatNote `json:"chat_notes,omitempty"`

	// CarriedFrom holds the date (YYYY-MM-DD) this job was carried over
	// from when it went unfinished the previous day.
	CarriedFrom string `json:"carried_from,omitempty"`

	// Review fields, populated by the evening workflow.
	Status  Status  `json:"status,omitempty"`
	Quality Quality `json:"quality,omitempty"`
	Problem string  `json:"problem,omitempty"`
}

// AddSub appends a child job and returns it.
func (j *Job) AddSub(name, description string) *Job {
	child := &Job{Name: name, Description: description}
	j.SubJobs = append(j.SubJobs, child)
	return child
}

// Refinement records one round of the plan refine loop.
type Refinement struct {
	Feedback      string `json:"feedback"`
	PreviousDraft string `json:"previous_draft"`
}

// Plan is the morning's record for one date. At most one exists per date.
type Plan struct {
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	Jobs        []*Job          `json:"jobs"`
	Content     string          `json:"content,omitempty"`
	Refinements []Refinement    `json:"refinements,omitempty"`
	Done        map[string]bool `json:"done,omitempty"`
	LastChecked time.Time       `json:"last_checked"`
}

// Unfinished returns the top-level jobs not marked done in the checklist.
func (p *Plan) Unfinished() []*Job {
	if p == nil {
		return nil
	}
	var out []*Job
	for _, job := range p.Jobs {
		if !p.Done[job.Name] {
			out = append(out, job)
		}
	}
	return out
}

// Review is the flattened review record for one job in the tree.
type Review struct {
	JobName string  `json:"job_name"`
	Status  Status  `json:"status"`
	Quality Quality `json:"quality,omitempty"`
	Problem string  `json:"problem,omitempty"`
}

// Log is the evening's record for one date: the reviewed plan, the
// generated summary, and any free-form chat that followed.
type Log struct {
	Date      string     `json:"date"`
	CreatedAt time.Time  `json:"created_at"`
	Plan      *Plan      `json:"plan"`
	Reviews   []Review   `json:"reviews"`
	Summary   string     `json:"summary,omitempty"`
	Chat      []ChatNote `json:"chat,omitempty"`
}

// FeedbackStatus tracks the lifecycle of a tool-improvement note.
type FeedbackStatus string

const (
	FeedbackPending     FeedbackStatus = "pending"
	FeedbackImplemented FeedbackStatus = "implemented"
	FeedbackDismissed   FeedbackStatus = "dismissed"
)

// ParseFeedbackStatus validates a feedback status value.
func ParseFeedbackStatus(value string) (FeedbackStatus, bool) {
	switch FeedbackStatus(value) {
	case FeedbackPending, FeedbackImplemented, FeedbackDismissed:
		return FeedbackStatus(value), true
	}
	return "", false
}

// UnderstandingRound is one iteration of the AI restating a feedback note.
type UnderstandingRound struct {
	Input         string `json:"input"`
	Understanding string `json:"understanding"`
}

// FeedbackEntry is a user note about the tool itself, independent of any
// plan or log. Entries append once and update status in place.
type FeedbackEntry struct {
	ID            string               `json:"id"`
	CreatedAt     time.Time            `json:"created_at"`
	Text          string               `json:"text"`
	Understanding string               `json:"understanding,omitempty"`
	History       []UnderstandingRound `json:"history,omitempty"`
	Status        FeedbackStatus       `json:"status"`
}
