// internal/ai/prompts.go
//
// Prompt construction and the high-level generation calls built on
// Complete. Sub-jobs are rendered recursively with two-space indentation
// per level so the model sees the hierarchy.

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/daybreak/internal/task"
)

const (
	planSystemPrompt = "You are a helpful planning assistant that creates clear, actionable daily plans with proper hierarchy."

	summarySystemPrompt = "You are a thoughtful reflection assistant that helps people learn from their daily experiences."

	refineSystemPrompt = "You are a helpful planning assistant that refines daily plans based on user feedback."

	chatSystemPrompt = "You are a helpful assistant for daily planning and reflection."

	feedbackSystemPrompt = "You are helping understand user feedback about a daily planning tool. " +
		"The user will describe what they want improved. Confirm your understanding of " +
		"their request in a clear, concise way."

	weekPlanSystemPrompt = "You are a helpful planning assistant that turns weekly goals into a focused, realistic week plan."
)

// GeneratePlan asks for a markdown checkbox plan covering the collected jobs.
func (c *Client) GeneratePlan(ctx context.Context, jobs []*task.Job) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: planSystemPrompt},
		{Role: RoleUser, Content: BuildPlanPrompt(jobs)},
	}
	return c.Complete(ctx, messages, c.tempPlanning)
}

// GenerateSummary asks for an end-of-day summary from the plan and reviews.
func (c *Client) GenerateSummary(ctx context.Context, plan *task.Plan, reviews []task.Review) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: summarySystemPrompt},
		{Role: RoleUser, Content: BuildSummaryPrompt(plan, reviews)},
	}
	return c.Complete(ctx, messages, c.tempPlanning)
}

// RefinePlan reworks the current draft according to user feedback.
func (c *Client) RefinePlan(ctx context.Context, current, feedback string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: refineSystemPrompt},
		{Role: RoleUser, Content: BuildRefinePrompt(current, feedback)},
	}
	return c.Complete(ctx, messages, c.tempPlanning)
}

// Chat appends the user message to the history, gets a reply at the chat
// temperature, and returns the reply plus the extended history.
func (c *Client) Chat(ctx context.Context, history []Message, message string) (string, []Message, error) {
	if len(history) == 0 {
		history = []Message{{Role: RoleSystem, Content: chatSystemPrompt}}
	}
	history = append(history, Message{Role: RoleUser, Content: message})
	reply, err := c.Complete(ctx, history, c.tempChat)
	if err != nil {
		return "", history, err
	}
	history = append(history, Message{Role: RoleAssistant, Content: reply})
	return reply, history, nil
}

// JobChatSystem seeds a per-job chat with the job's context.
func JobChatSystem(job *task.Job) Message {
	content := fmt.Sprintf(
		"You are helping the user plan their '%s' tasks. They want to do: %s. "+
			"Help them think through this task, offer suggestions, or answer questions. "+
			"Be concise and helpful.",
		job.Name, job.Goal,
	)
	return Message{Role: RoleSystem, Content: content}
}

// Understand restates a tool-improvement note so the user can confirm it
// was understood before it is filed.
func (c *Client) Understand(ctx context.Context, description string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: feedbackSystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf(
			"User feedback: %s\n\nPlease confirm your understanding of what the user wants.",
			description,
		)},
	}
	return c.Complete(ctx, messages, c.tempPlanning)
}

// GenerateWeekPlan expands the week's goals into a checkbox plan, framed
// by the year theme and month goals when they exist.
func (c *Client) GenerateWeekPlan(ctx context.Context, theme string, monthGoals, weekGoals []string, weekRange string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: weekPlanSystemPrompt},
		{Role: RoleUser, Content: BuildWeekPlanPrompt(theme, monthGoals, weekGoals, weekRange)},
	}
	return c.Complete(ctx, messages, c.tempPlanning)
}

// BuildWeekPlanPrompt renders the horizon context into the week prompt.
func BuildWeekPlanPrompt(theme string, monthGoals, weekGoals []string, weekRange string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a plan for the week %s.\n\n", weekRange)
	if theme != "" {
		fmt.Fprintf(&b, "Year theme: %s\n", theme)
	}
	if len(monthGoals) > 0 {
		b.WriteString("Month goals:\n")
		for _, goal := range monthGoals {
			fmt.Fprintf(&b, "- %s\n", goal)
		}
	}
	b.WriteString("\nGoals for this week:\n")
	for _, goal := range weekGoals {
		fmt.Fprintf(&b, "- %s\n", goal)
	}
	b.WriteString("\nUse markdown checkbox syntax (- [ ]) and keep every goal represented. ")
	b.WriteString("Stay concise; this is a week overview, not a daily schedule.")
	return b.String()
}

// BuildPlanPrompt renders the collected job tree into the planning prompt.
func BuildPlanPrompt(jobs []*task.Job) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that creates organized daily plans.\n\n")
	b.WriteString("Based on the following job inputs, create a detailed daily plan with checkboxes.\n")
	b.WriteString("Break down each job into specific, actionable tasks.\n")
	b.WriteString("Use markdown format with checkbox syntax (- [ ]).\n")
	b.WriteString("For sub-tasks, use nested indentation to show hierarchy.\n\n")

	for _, job := range jobs {
		fmt.Fprintf(&b, "## %s\n", job.Name)
		fmt.Fprintf(&b, "Description: %s\n", job.Description)
		fmt.Fprintf(&b, "What to do: %s\n", job.Goal)
		if job.CarriedFrom != "" {
			fmt.Fprintf(&b, "Carried over from: %s\n", job.CarriedFrom)
		}
		if len(job.SubJobs) > 0 {
			b.WriteString("Sub-tasks:\n")
			writeSubJobs(&b, job.SubJobs, 1)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please create a well-organized daily plan with clear, actionable tasks. Preserve the hierarchy of sub-tasks.")
	return b.String()
}

func writeSubJobs(b *strings.Builder, jobs []*task.Job, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, sub := range jobs {
		fmt.Fprintf(b, "%s- Sub-task: %s\n", indent, sub.Name)
		fmt.Fprintf(b, "%s  What to do: %s\n", indent, sub.Description)
		writeSubJobs(b, sub.SubJobs, depth+1)
	}
}

// BuildSummaryPrompt renders the plan and review data into the summary prompt.
func BuildSummaryPrompt(plan *task.Plan, reviews []task.Review) string {
	var b strings.Builder
	b.WriteString("You are a thoughtful assistant that helps reflect on daily progress.\n\n")
	b.WriteString("Based on the following plan and review, create a comprehensive daily summary.\n")
	b.WriteString("Include accomplishments, challenges, reflections, and recommendations for tomorrow.\n\n")

	b.WriteString("## Original Plan:\n")
	for _, job := range plan.Jobs {
		fmt.Fprintf(&b, "### %s\n%s\n\n", job.Name, job.Goal)
	}

	b.WriteString("## Review:\n")
	for _, review := range reviews {
		fmt.Fprintf(&b, "### %s\n", review.JobName)
		fmt.Fprintf(&b, "Status: %s\n", review.Status)
		if review.Quality != task.QualityUnset {
			fmt.Fprintf(&b, "Quality: %s\n", review.Quality)
		}
		if review.Problem != "" {
			fmt.Fprintf(&b, "Issue: %s\n", review.Problem)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please create a thoughtful summary with sections for:\n")
	b.WriteString("1. Accomplishments\n2. Challenges\n3. Reflection\n4. Recommendations for Tomorrow")
	return b.String()
}

// BuildRefinePrompt asks for the current draft to be updated per feedback.
func BuildRefinePrompt(current, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is the current daily plan:\n\n%s\n\n", current)
	fmt.Fprintf(&b, "User feedback: %s\n\n", feedback)
	b.WriteString("Please update the plan based on the feedback. Keep the same structure and format. ")
	b.WriteString("Make the requested changes while preserving what works well.")
	return b.String()
}
