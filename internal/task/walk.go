// internal/task/walk.go
//
// Depth-first traversal over job trees. Walks are pre-order: the parent is
// visited before its sub-jobs, matching the order inputs are collected and
// reviews are taken.

package task

import "fmt"

// MaxDepth caps traversal depth. The structure is a strict tree so cycles
// cannot occur, but a sanity limit keeps pathological input from recursing
// without bound.
const MaxDepth = 32

// ErrTooDeep is returned when a tree nests past MaxDepth.
var ErrTooDeep = fmt.Errorf("task: tree nests deeper than %d levels", MaxDepth)

// WalkFunc receives each job with its depth (0 for top-level jobs).
type WalkFunc func(job *Job, depth int) error

// Walk visits every job in pre-order, each exactly once. Sibling order is
// list order; no other ordering exists across subtrees. The first error
// stops the walk and is returned.
func Walk(jobs []*Job, fn WalkFunc) error {
	return walk(jobs, 0, fn)
}

func walk(jobs []*Job, depth int, fn WalkFunc) error {
	if depth >= MaxDepth {
		return ErrTooDeep
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if err := fn(job, depth); err != nil {
			return err
		}
		if err := walk(job.SubJobs, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of jobs including all sub-jobs.
func Count(jobs []*Job) int {
	total := 0
	_ = Walk(jobs, func(*Job, int) error {
		total++
		return nil
	})
	return total
}

// CountDone returns how many jobs in the tree are marked done in the
// checklist map, keyed by job name.
func CountDone(jobs []*Job, done map[string]bool) int {
	total := 0
	_ = Walk(jobs, func(job *Job, _ int) error {
		if done[job.Name] {
			total++
		}
		return nil
	})
	return total
}

// Clone deep-copies a job tree so the evening log can embed the plan
// without sharing mutable state with it.
func Clone(jobs []*Job) []*Job {
	if jobs == nil {
		return nil
	}
	out := make([]*Job, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		copied := *job
		copied.SubJobs = Clone(job.SubJobs)
		copied.ChatNotes = append([]ChatNote(nil), job.ChatNotes...)
		out = append(out, &copied)
	}
	return out
}

// ClonePlan deep-copies a plan, including its job tree and checklist map.
func ClonePlan(p *Plan) *Plan {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Jobs = Clone(p.Jobs)
	copied.Refinements = append([]Refinement(nil), p.Refinements...)
	if p.Done != nil {
		copied.Done = make(map[string]bool, len(p.Done))
		for name, ok := range p.Done {
			copied.Done[name] = ok
		}
	}
	return &copied
}
