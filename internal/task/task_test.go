package task

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func buildTree(depth, fanout int) []*Job {
	if depth == 0 {
		return nil
	}
	jobs := make([]*Job, 0, fanout)
	for i := 0; i < fanout; i++ {
		job := &Job{Name: nodeName(depth, i), Description: "desc"}
		job.SubJobs = buildTree(depth-1, fanout)
		jobs = append(jobs, job)
	}
	return jobs
}

func nodeName(depth, idx int) string {
	return string(rune('a'+idx)) + "-" + string(rune('0'+depth))
}

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	for _, depth := range []int{1, 3, 10} {
		jobs := buildTree(depth, 2)
		want := Count(jobs)
		seen := map[*Job]int{}
		visits := 0
		err := Walk(jobs, func(job *Job, _ int) error {
			seen[job]++
			visits++
			return nil
		})
		if err != nil {
			t.Fatalf("walk depth %d: %v", depth, err)
		}
		if visits != want {
			t.Fatalf("depth %d: visited %d nodes, want %d", depth, visits, want)
		}
		for job, n := range seen {
			if n != 1 {
				t.Fatalf("depth %d: %s visited %d times", depth, job.Name, n)
			}
		}
	}
}

func TestWalkReportsDepth(t *testing.T) {
	root := &Job{Name: "root"}
	child := root.AddSub("child", "")
	child.AddSub("grandchild", "")
	depths := map[string]int{}
	if err := Walk([]*Job{root}, func(job *Job, depth int) error {
		depths[job.Name] = depth
		return nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	for name, want := range map[string]int{"root": 0, "child": 1, "grandchild": 2} {
		if depths[name] != want {
			t.Fatalf("depth of %s = %d, want %d", name, depths[name], want)
		}
	}
}

func TestWalkRejectsExcessiveDepth(t *testing.T) {
	root := &Job{Name: "n0"}
	current := root
	for i := 1; i <= MaxDepth; i++ {
		current = current.AddSub("n", "")
	}
	err := Walk([]*Job{root}, func(*Job, int) error { return nil })
	if err != ErrTooDeep {
		t.Fatalf("walk error = %v, want ErrTooDeep", err)
	}
}

func TestJobTreeJSONRoundTrip(t *testing.T) {
	root := &Job{Name: "deep work", Description: "focused project time", Goal: "finish parser"}
	sub := root.AddSub("outline", "sketch the approach")
	sub.AddSub("review notes", "re-read yesterday's notes")
	root.ChatNotes = []ChatNote{{User: "how long?", Assistant: "about two hours"}}
	root.Status = StatusPartial
	root.Problem = "meeting ran over"

	plan := &Plan{
		Date:      "2026-03-02",
		CreatedAt: time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC),
		Jobs:      []*Job{root, {Name: "exercise", Goal: "run 5k"}},
		Content:   "- [ ] deep work\n- [ ] exercise",
		Done:      map[string]bool{"exercise": true},
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Plan
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(&got, plan) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", &got, plan)
	}
}

func TestCountDone(t *testing.T) {
	root := &Job{Name: "a"}
	root.AddSub("b", "")
	root.AddSub("c", "")
	done := map[string]bool{"a": true, "c": true}
	if got := CountDone([]*Job{root}, done); got != 2 {
		t.Fatalf("CountDone = %d, want 2", got)
	}
	if got := Count([]*Job{root}); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := &Job{Name: "a", ChatNotes: []ChatNote{{User: "u", Assistant: "a"}}}
	root.AddSub("b", "")
	clone := Clone([]*Job{root})
	clone[0].SubJobs[0].Name = "changed"
	clone[0].ChatNotes[0].User = "changed"
	if root.SubJobs[0].Name != "b" {
		t.Fatalf("clone shares sub-job storage with original")
	}
	if root.ChatNotes[0].User != "u" {
		t.Fatalf("clone shares chat note storage with original")
	}
}

func TestUnfinished(t *testing.T) {
	plan := &Plan{
		Jobs: []*Job{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		Done: map[string]bool{"b": true},
	}
	got := plan.Unfinished()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Fatalf("Unfinished = %v", names(got))
	}
}

func names(jobs []*Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Name
	}
	return out
}

func TestParseHelpers(t *testing.T) {
	if s, ok := ParseStatus("partial"); !ok || s != StatusPartial {
		t.Fatalf("ParseStatus(partial) = %q, %v", s, ok)
	}
	if _, ok := ParseStatus("maybe"); ok {
		t.Fatalf("ParseStatus accepted invalid value")
	}
	if q, ok := ParseQuality("good"); !ok || q != QualityGood {
		t.Fatalf("ParseQuality(good) = %q, %v", q, ok)
	}
	if _, ok := ParseFeedbackStatus("ignored"); ok {
		t.Fatalf("ParseFeedbackStatus accepted invalid value")
	}
}
