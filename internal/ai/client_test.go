package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kingrea/daybreak/internal/config"
	"github.com/kingrea/daybreak/internal/task"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.AIConfig{
		Model:               "test-model",
		APIBase:             srv.URL,
		TemperaturePlanning: 0,
		TemperatureChat:     0.7,
		MaxTokens:           256,
	}
	return New("sk-test", cfg, WithHTTPClient(srv.Client()))
}

func completionJSON(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, completionJSON("- [ ] write tests"))
	})

	text, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "plan my day"}}, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "- [ ] write tests" {
		t.Fatalf("text = %q", text)
	}
	if gotPath != completionsPath {
		t.Fatalf("path = %q, want %q", gotPath, completionsPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestCompleteEmptyContentIsContentError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, completionJSON("   "))
	})

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	var content *ContentError
	if !errors.As(err, &content) {
		t.Fatalf("error = %v, want ContentError", err)
	}
	if calls != 1 {
		t.Fatalf("made %d calls, want 1 (content errors never retry)", calls)
	}
}

func TestCompleteClientErrorDoesNotRetry(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"auth"}}`)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	var svc *ServiceError
	if !errors.As(err, &svc) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
	if svc.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", svc.Status)
	}
	if svc.Message != "invalid api key" {
		t.Fatalf("message = %q", svc.Message)
	}
	if calls != 1 {
		t.Fatalf("made %d calls, want 1", calls)
	}
}

func TestCompleteRetriesRateLimitThenSucceeds(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
			return
		}
		fmt.Fprint(w, completionJSON("ok"))
	})

	text, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "ok" {
		t.Fatalf("text = %q", text)
	}
	if calls != 2 {
		t.Fatalf("made %d calls, want 2", calls)
	}
}

func TestCompleteExhaustsRetriesOnServerError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	var svc *ServiceError
	if !errors.As(err, &svc) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
	if svc.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d", svc.Status)
	}
	if calls != maxRetries {
		t.Fatalf("made %d calls, want %d", calls, maxRetries)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	client := New("", config.AIConfig{Model: "m", APIBase: "https://example.com"})
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	var svc *ServiceError
	if !errors.As(err, &svc) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
}

func TestChatExtendsHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionJSON("sure thing"))
	})

	reply, history, err := client.Chat(context.Background(), nil, "help me focus")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "sure thing" {
		t.Fatalf("reply = %q", reply)
	}
	// system + user + assistant
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0].Role != RoleSystem || history[1].Role != RoleUser || history[2].Role != RoleAssistant {
		t.Fatalf("history roles = %v", history)
	}

	_, history, err = client.Chat(context.Background(), history, "thanks")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history length after second turn = %d, want 5", len(history))
	}
}

func TestBuildPlanPromptNestsSubJobs(t *testing.T) {
	root := &task.Job{Name: "Deep Work", Description: "Focused time", Goal: "finish parser"}
	sub := root.AddSub("outline", "sketch approach")
	sub.AddSub("review notes", "re-read notes")
	root.CarriedFrom = "2026-03-01"

	prompt := BuildPlanPrompt([]*task.Job{root})

	for _, want := range []string{
		"## Deep Work",
		"What to do: finish parser",
		"Carried over from: 2026-03-01",
		"  - Sub-task: outline",
		"    - Sub-task: review notes",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildWeekPlanPromptFramesContext(t *testing.T) {
	prompt := BuildWeekPlanPrompt(
		"Year of Depth",
		[]string{"ship the parser"},
		[]string{"write tests", "draft docs"},
		"2026-03-02 to 2026-03-08",
	)

	for _, want := range []string{
		"week 2026-03-02 to 2026-03-08",
		"Year theme: Year of Depth",
		"- ship the parser",
		"- write tests",
		"- draft docs",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildWeekPlanPromptOmitsEmptyContext(t *testing.T) {
	prompt := BuildWeekPlanPrompt("", nil, []string{"rest"}, "2026-03-02 to 2026-03-08")
	if strings.Contains(prompt, "Year theme") || strings.Contains(prompt, "Month goals") {
		t.Fatalf("empty context should be omitted:\n%s", prompt)
	}
}

func TestBuildSummaryPromptIncludesReviews(t *testing.T) {
	plan := &task.Plan{
		Date: "2026-03-02",
		Jobs: []*task.Job{{Name: "Deep Work", Goal: "finish parser"}},
	}
	reviews := []task.Review{
		{JobName: "Deep Work", Status: task.StatusDone, Quality: task.QualityGood},
		{JobName: "Admin", Status: task.StatusNotDone, Problem: "meeting ran over"},
	}

	prompt := BuildSummaryPrompt(plan, reviews)

	for _, want := range []string{
		"### Deep Work",
		"Status: yes",
		"Quality: good",
		"Issue: meeting ran over",
		"Recommendations for Tomorrow",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
