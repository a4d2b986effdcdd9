// internal/review/checklist.go
//
// The daytime check workflow: a flattened view over the plan's job tree
// with toggleable done marks. Marks live in the plan's Done map keyed by
// job name, so saving the plan persists progress.

package review

import (
	"time"

	"github.com/kingrea/daybreak/internal/task"
)

// Row is one line of the flattened checklist.
type Row struct {
	Job   *task.Job
	Depth int
}

// Checklist wraps a plan for the midday progress check.
type Checklist struct {
	plan *task.Plan
	rows []Row
}

// NewChecklist flattens the plan's jobs in pre-order.
func NewChecklist(plan *task.Plan) *Checklist {
	if plan.Done == nil {
		plan.Done = map[string]bool{}
	}
	c := &Checklist{plan: plan}
	_ = task.Walk(plan.Jobs, func(job *task.Job, depth int) error {
		c.rows = append(c.rows, Row{Job: job, Depth: depth})
		return nil
	})
	return c
}

// Rows returns the flattened checklist rows.
func (c *Checklist) Rows() []Row { return c.rows }

// Done reports whether the row's job is marked done.
func (c *Checklist) Done(i int) bool {
	if i < 0 || i >= len(c.rows) {
		return false
	}
	return c.plan.Done[c.rows[i].Job.Name]
}

// Toggle flips the done mark for the row's job.
func (c *Checklist) Toggle(i int) {
	if i < 0 || i >= len(c.rows) {
		return
	}
	name := c.rows[i].Job.Name
	c.plan.Done[name] = !c.plan.Done[name]
}

// Progress returns done and total counts over the whole tree.
func (c *Checklist) Progress() (done, total int) {
	return task.CountDone(c.plan.Jobs, c.plan.Done), task.Count(c.plan.Jobs)
}

// Finish stamps the check time so the dashboard can show when progress
// was last recorded.
func (c *Checklist) Finish(now time.Time) {
	c.plan.LastChecked = now
}

// Plan returns the underlying plan for saving.
func (c *Checklist) Plan() *task.Plan { return c.plan }
