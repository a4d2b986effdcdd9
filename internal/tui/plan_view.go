// internal/tui/plan_view.go
//
// The morning planning screen. A planner.Session drives the questions;
// this view renders the current step, forwards answers, and runs the AI
// generation and chat calls as bubbletea commands.

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/daybreak/internal/ai"
	"github.com/kingrea/daybreak/internal/planner"
	"github.com/kingrea/daybreak/internal/task"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E2E8F0"))
	draftStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBD5E0"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
)

type planDraftMsg struct {
	draft string
	err   error
}

type planRefineMsg struct {
	feedback string
	draft    string
	err      error
}

type planChatMsg struct {
	user    string
	reply   string
	history []ai.Message
	err     error
}

type planView struct {
	app     *App
	session *planner.Session
	input   textinput.Model
	spinner spinner.Model

	// existing holds today's saved plan; the user confirms before a new
	// session is allowed to replace it.
	existing *task.Plan

	busy        bool
	lastErr     error
	retryTarget func() tea.Cmd
	chatHistory []ai.Message
	chatJob     *task.Job
}

func newPlanView(app *App) *planView {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	today := app.store.Today()
	var existing *task.Plan
	if plan, err := app.store.LoadPlan(today); err == nil {
		existing = plan
	}

	var previous *task.Plan
	if dates, err := app.store.ListPlanDates(); err == nil {
		for _, date := range dates {
			if date < today {
				if plan, err := app.store.LoadPlan(date); err == nil {
					previous = plan
				}
				break
			}
		}
	}

	return &planView{
		app:      app,
		session:  planner.NewSession(app.config.DailyJobs(), previous),
		input:    input,
		spinner:  sp,
		existing: existing,
	}
}

func (v *planView) Init() tea.Cmd {
	if v.existing != nil {
		return textinput.Blink
	}
	if v.session.Step().Kind == planner.StepDone {
		return finishWorkflow("Nothing to plan: no job categories configured")
	}
	return textinput.Blink
}

func (v *planView) capturesEsc() bool { return v.busy }

func (v *planView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !v.busy {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case planDraftMsg:
		v.busy = false
		if msg.err != nil {
			return v.handleAIError(msg.err, v.generateCmd)
		}
		v.lastErr = nil
		v.session.SetDraft(msg.draft)
		v.app.setStatus("Plan drafted · accept or refine it")
		return nil

	case planRefineMsg:
		v.busy = false
		if msg.err != nil {
			feedback := msg.feedback
			return v.handleAIError(msg.err, func() tea.Cmd { return v.refineCmd(feedback) })
		}
		v.lastErr = nil
		v.session.ApplyRefinement(msg.feedback, msg.draft)
		v.app.setStatus("Plan refined · accept or refine again")
		return nil

	case planChatMsg:
		v.busy = false
		if msg.err != nil {
			user := msg.user
			return v.handleAIError(msg.err, func() tea.Cmd { return v.chatCmd(user) })
		}
		v.lastErr = nil
		v.chatHistory = msg.history
		v.session.RecordChat(msg.user, msg.reply)
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	if !v.busy {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	return nil
}

func (v *planView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.busy {
		return nil
	}
	switch msg.String() {
	case "r":
		if v.lastErr != nil && v.retryTarget != nil && v.input.Value() == "" {
			v.lastErr = nil
			return v.startAICall(v.retryTarget())
		}
	case "enter":
		return v.submit()
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *planView) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	v.input.SetValue("")

	if v.existing != nil {
		return v.confirmRedo(text)
	}
	step := v.session.Step()

	if step.Kind == planner.StepChat && text != "" {
		if !v.app.requireAI() {
			return nil
		}
		return v.startAICall(v.chatCmd(text))
	}
	if step.Kind == planner.StepRefineFeedback && text != "" {
		if !v.app.requireAI() {
			return nil
		}
		return v.startAICall(v.refineCmd(text))
	}

	if err := v.session.Answer(text); err != nil {
		var input *planner.InputError
		if errors.As(err, &input) {
			v.app.setStatus(input.Msg)
			return nil
		}
		v.app.setStatus(err.Error())
		return nil
	}
	return v.afterAnswer()
}

// confirmRedo gates a fresh session behind a yes/no when a plan already
// exists for today.
func (v *planView) confirmRedo(text string) tea.Cmd {
	switch strings.ToLower(text) {
	case "y", "yes":
		v.existing = nil
		if v.session.Step().Kind == planner.StepDone {
			return finishWorkflow("Nothing to plan: no job categories configured")
		}
		return nil
	case "", "n", "no":
		return finishWorkflow("Keeping today's plan")
	}
	v.app.setStatus(fmt.Sprintf("Answer yes or no, got %q", text))
	return nil
}

func (v *planView) afterAnswer() tea.Cmd {
	step := v.session.Step()
	if step.Job != v.chatJob {
		// New chat subject; the conversation starts over.
		v.chatHistory = nil
		v.chatJob = step.Job
	}
	switch step.Kind {
	case planner.StepGenerate:
		if !v.app.requireAI() {
			return nil
		}
		return v.startAICall(v.generateCmd())
	case planner.StepDone:
		return v.savePlan()
	}
	return nil
}

func (v *planView) startAICall(cmd tea.Cmd) tea.Cmd {
	v.busy = true
	return tea.Batch(v.spinner.Tick, cmd)
}

func (v *planView) generateCmd() tea.Cmd {
	jobs := v.session.Jobs()
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	return func() tea.Msg {
		defer cancel()
		draft, err := client.GeneratePlan(ctx, jobs)
		return planDraftMsg{draft: draft, err: err}
	}
}

func (v *planView) refineCmd(feedback string) tea.Cmd {
	current := v.session.Draft()
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	return func() tea.Msg {
		defer cancel()
		draft, err := client.RefinePlan(ctx, current, feedback)
		return planRefineMsg{feedback: feedback, draft: draft, err: err}
	}
}

func (v *planView) chatCmd(message string) tea.Cmd {
	history := v.chatHistory
	if len(history) == 0 && v.chatJob != nil {
		history = []ai.Message{ai.JobChatSystem(v.chatJob)}
	}
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	return func() tea.Msg {
		defer cancel()
		reply, newHistory, err := client.Chat(ctx, history, message)
		return planChatMsg{user: message, reply: reply, history: newHistory, err: err}
	}
}

// handleAIError distinguishes retryable service faults from unusable
// responses. The session state is untouched either way.
func (v *planView) handleAIError(err error, retry func() tea.Cmd) tea.Cmd {
	v.lastErr = err
	var svc *ai.ServiceError
	if errors.As(err, &svc) {
		v.retryTarget = retry
		v.app.logError("AI call failed: %v", err)
		v.app.setStatus("AI call failed · press r to retry, esc to abort")
		return nil
	}
	v.retryTarget = retry
	v.app.logError("AI response unusable: %v", err)
	v.app.setStatus("AI returned an unusable response · press r to retry, esc to abort")
	return nil
}

func (v *planView) savePlan() tea.Cmd {
	if len(v.session.Jobs()) == 0 {
		// Every category was skipped; keep whatever plan already exists.
		v.app.logInfo("Planning ended with no inputs; nothing saved")
		return finishWorkflow("Nothing planned · no inputs provided")
	}
	plan := v.session.BuildPlan(v.app.store.Today(), v.app.now())
	if err := v.app.store.SavePlan(plan); err != nil {
		v.app.logError("Save plan failed: %v", err)
		v.app.setStatus(err.Error())
		return nil
	}
	v.app.logInfo("Plan saved for %s (%d jobs)", plan.Date, len(plan.Jobs))
	return finishWorkflow(fmt.Sprintf("Plan saved for %s", plan.Date))
}

func (v *planView) View() string {
	if v.busy {
		return fmt.Sprintf("%s Talking to the AI…", v.spinner.View())
	}

	if v.existing != nil {
		var b strings.Builder
		b.WriteString(questionStyle.Render("Today already has a plan:") + "\n\n")
		if v.existing.Content != "" {
			b.WriteString(draftStyle.Render(v.existing.Content) + "\n\n")
		}
		for _, job := range v.existing.Jobs {
			mark := "[ ]"
			if v.existing.Done[job.Name] {
				mark = "[x]"
			}
			b.WriteString(draftStyle.Render(fmt.Sprintf("%s %s", mark, job.Name)) + "\n")
		}
		b.WriteString("\n" + questionStyle.Render("Plan the day again? This replaces it. (y/n)") + "\n")
		b.WriteString("\n" + v.input.View())
		b.WriteString(hintStyle.Render("\nenter=answer  esc=back to menu"))
		return b.String()
	}

	step := v.session.Step()
	var b strings.Builder

	switch step.Kind {
	case planner.StepCarryOver:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(
			fmt.Sprintf("Carry over %q from %s? (y/n)", step.Job.Name, step.Job.CarriedFrom)))
		if step.Job.Goal != "" {
			fmt.Fprintf(&b, "%s\n", draftStyle.Render("Goal: "+step.Job.Goal))
		}
	case planner.StepGoal:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("%s · what will you do today?", step.Category.Name)))
		if step.Category.Description != "" {
			fmt.Fprintf(&b, "%s\n", draftStyle.Render(step.Category.Description))
		}
		b.WriteString(draftStyle.Render("(leave empty to skip this category)") + "\n")
	case planner.StepAskSub:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("Add a sub-task under %q? (y/n)", step.Job.Name)))
	case planner.StepSubName:
		b.WriteString(questionStyle.Render("Sub-task name:") + "\n")
	case planner.StepSubDesc:
		b.WriteString(questionStyle.Render("What needs doing for it?") + "\n")
	case planner.StepAskChat:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("Talk through %q with the AI? (y/n)", step.Job.Name)))
	case planner.StepChat:
		b.WriteString(v.renderChat(step.Job))
	case planner.StepGenerate:
		b.WriteString(questionStyle.Render("Ready to generate the plan.") + "\n")
		if v.lastErr != nil {
			b.WriteString(errorStyle.Render(v.lastErr.Error()) + "\n")
		}
	case planner.StepRefineAsk:
		b.WriteString(questionStyle.Render("Here is the draft plan:") + "\n\n")
		b.WriteString(draftStyle.Render(v.session.Draft()) + "\n\n")
		b.WriteString(questionStyle.Render("Accept this plan? (y/n)") + "\n")
	case planner.StepRefineFeedback:
		b.WriteString(questionStyle.Render("What should change?") + "\n")
	case planner.StepDone:
		b.WriteString("Saving…")
		return b.String()
	}

	b.WriteString("\n" + v.input.View())
	b.WriteString(hintStyle.Render("\nenter=answer  esc=back to menu"))
	return b.String()
}

func (v *planView) renderChat(job *task.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("Chatting about %q · empty message ends the chat", job.Name)))
	for _, note := range job.ChatNotes {
		fmt.Fprintf(&b, "%s\n", draftStyle.Render("You: "+note.User))
		fmt.Fprintf(&b, "%s\n", draftStyle.Render("AI:  "+note.Assistant))
	}
	return b.String()
}
