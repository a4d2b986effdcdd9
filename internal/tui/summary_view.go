// internal/tui/summary_view.go
//
// The evening screen. With no log yet it walks a review.Session over
// today's plan, generates the summary, and saves the log plus its
// markdown rendering. With a log already written it shows it read-only.

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/daybreak/internal/ai"
	"github.com/kingrea/daybreak/internal/review"
	"github.com/kingrea/daybreak/internal/store"
	"github.com/kingrea/daybreak/internal/task"
)

type summaryGeneratedMsg struct {
	summary string
	err     error
}

type summaryChatMsg struct {
	user    string
	reply   string
	history []ai.Message
	err     error
}

type summaryView struct {
	app     *App
	session *review.Session
	input   textinput.Model
	spinner spinner.Model

	existing    *task.Log // non-nil in read-only mode
	busy        bool
	lastErr     error
	retryTarget func() tea.Cmd
	chatHistory []ai.Message
}

func newSummaryView(app *App) (*summaryView, error) {
	today := app.store.Today()

	if log, err := app.store.LoadLog(today); err == nil {
		return &summaryView{app: app, existing: log}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	plan, err := app.store.LoadPlan(today)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no plan for today · plan the day before summarizing it")
		}
		return nil, err
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	view := &summaryView{
		app:     app,
		session: review.NewSession(plan),
		input:   input,
		spinner: sp,
	}
	return view, nil
}

// Init kicks off summary generation straight away when the plan had no
// jobs to review.
func (v *summaryView) Init() tea.Cmd {
	if v.existing != nil {
		return nil
	}
	if v.session.Step().Kind == review.StepSummarize {
		if !v.app.requireAI() {
			return nil
		}
		return v.startAICall(v.generateCmd())
	}
	return textinput.Blink
}

func (v *summaryView) capturesEsc() bool { return v.busy }

func (v *summaryView) Update(msg tea.Msg) tea.Cmd {
	if v.existing != nil {
		return nil
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !v.busy {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case summaryGeneratedMsg:
		v.busy = false
		if msg.err != nil {
			return v.handleAIError(msg.err, v.generateCmd)
		}
		v.lastErr = nil
		v.session.SetSummary(msg.summary)
		v.app.setStatus("Summary ready · chat about the day or press enter to finish")
		return nil

	case summaryChatMsg:
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

func (v *summaryView) handleKey(msg tea.KeyMsg) tea.Cmd {
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

func (v *summaryView) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	v.input.SetValue("")
	step := v.session.Step()

	if step.Kind == review.StepChat && text != "" {
		if !v.app.requireAI() {
			return nil
		}
		return v.startAICall(v.chatCmd(text))
	}

	if err := v.session.Answer(text); err != nil {
		var input *review.InputError
		if errors.As(err, &input) {
			v.app.setStatus(input.Msg)
			return nil
		}
		v.app.setStatus(err.Error())
		return nil
	}

	switch v.session.Step().Kind {
	case review.StepSummarize:
		if !v.app.requireAI() {
			return nil
		}
		return v.startAICall(v.generateCmd())
	case review.StepDone:
		return v.saveLog()
	}
	return nil
}

func (v *summaryView) startAICall(cmd tea.Cmd) tea.Cmd {
	v.busy = true
	return tea.Batch(v.spinner.Tick, cmd)
}

func (v *summaryView) generateCmd() tea.Cmd {
	plan := v.session.BuildLog(v.app.store.Today(), v.app.now()).Plan
	reviews := v.session.Reviews()
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	return func() tea.Msg {
		defer cancel()
		summary, err := client.GenerateSummary(ctx, plan, reviews)
		return summaryGeneratedMsg{summary: summary, err: err}
	}
}

func (v *summaryView) chatCmd(message string) tea.Cmd {
	history := v.chatHistory
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	return func() tea.Msg {
		defer cancel()
		reply, newHistory, err := client.Chat(ctx, history, message)
		return summaryChatMsg{user: message, reply: reply, history: newHistory, err: err}
	}
}

func (v *summaryView) handleAIError(err error, retry func() tea.Cmd) tea.Cmd {
	v.lastErr = err
	v.retryTarget = retry
	v.app.logError("AI call failed: %v", err)
	v.app.setStatus("AI call failed · press r to retry, esc to abort")
	return nil
}

func (v *summaryView) saveLog() tea.Cmd {
	log := v.session.BuildLog(v.app.store.Today(), v.app.now())
	if err := v.app.store.SaveLog(log); err != nil {
		v.app.logError("Save log failed: %v", err)
		v.app.setStatus(err.Error())
		return nil
	}
	if err := v.app.store.SaveLogMarkdown(log); err != nil {
		v.app.logWarn("Markdown export failed: %v", err)
	}
	v.app.logInfo("Log saved for %s (%d reviews)", log.Date, len(log.Reviews))
	return finishWorkflow(fmt.Sprintf("Day summarized · log saved for %s", log.Date))
}

func (v *summaryView) View() string {
	if v.existing != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\n", questionStyle.Render(fmt.Sprintf("Log for %s", v.existing.Date)))
		b.WriteString(draftStyle.Render(store.RenderLogMarkdown(v.existing)))
		b.WriteString(hintStyle.Render("\nesc=back to menu"))
		return b.String()
	}

	if v.busy {
		return fmt.Sprintf("%s Talking to the AI…", v.spinner.View())
	}

	step := v.session.Step()
	var b strings.Builder
	switch step.Kind {
	case review.StepStatus:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("Did %q get done? (yes/no/partial)", step.Job.Name)))
		if step.Job.Goal != "" {
			fmt.Fprintf(&b, "%s\n", draftStyle.Render("Goal: "+step.Job.Goal))
		}
	case review.StepQuality:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("How did %q go? (excellent/good/okay)", step.Job.Name)))
	case review.StepProblem:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("What got in the way of %q? (optional)", step.Job.Name)))
	case review.StepSummarize:
		b.WriteString(questionStyle.Render("Reviews done · generating the summary next.") + "\n")
		if v.lastErr != nil {
			b.WriteString(errorStyle.Render(v.lastErr.Error()) + "\n")
		}
	case review.StepChat:
		b.WriteString(questionStyle.Render("Summary") + "\n\n")
		b.WriteString(draftStyle.Render(v.session.Summary()) + "\n\n")
		b.WriteString(questionStyle.Render("Chat about the day · empty message finishes") + "\n")
	case review.StepDone:
		b.WriteString("Saving…")
		return b.String()
	}

	b.WriteString("\n" + v.input.View())
	b.WriteString(hintStyle.Render("\nenter=answer  esc=back to menu"))
	return b.String()
}
