// internal/tui/feedback_view.go
//
// Tool feedback: notes about daybreak itself. New notes go through an
// understanding loop with the AI before being filed; existing notes can
// be marked implemented or dismissed.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/daybreak/internal/task"
)

type feedbackMode int

const (
	feedbackList    feedbackMode = iota // Browsing existing entries
	feedbackCompose                     // Typing a new note
	feedbackConfirm                     // Reviewing the AI's understanding
)

type feedbackUnderstoodMsg struct {
	input         string
	understanding string
	err           error
}

type feedbackView struct {
	app     *App
	mode    feedbackMode
	input   textinput.Model
	spinner spinner.Model

	entries   []task.FeedbackEntry
	selection int

	busy          bool
	lastErr       error
	retryInput    string
	draftText     string
	understanding string
	history       []task.UnderstandingRound
}

func newFeedbackView(app *App) *feedbackView {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	view := &feedbackView{app: app, input: input, spinner: sp}
	view.reload()
	return view
}

func (v *feedbackView) reload() {
	entries, err := v.app.store.LoadFeedback()
	if err != nil {
		v.app.setStatus(err.Error())
		return
	}
	v.entries = entries
	if v.selection >= len(entries) {
		v.selection = max(0, len(entries)-1)
	}
}

func (v *feedbackView) capturesEsc() bool {
	return v.mode != feedbackList || v.busy
}

func (v *feedbackView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !v.busy {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case feedbackUnderstoodMsg:
		v.busy = false
		if msg.err != nil {
			v.lastErr = msg.err
			v.retryInput = msg.input
			v.app.logError("Feedback understanding failed: %v", msg.err)
			v.app.setStatus("AI call failed · press r to retry, esc to cancel")
			return nil
		}
		v.lastErr = nil
		v.understanding = msg.understanding
		v.history = append(v.history, task.UnderstandingRound{
			Input:         msg.input,
			Understanding: msg.understanding,
		})
		v.mode = feedbackConfirm
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	if !v.busy && v.mode != feedbackList {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	return nil
}

func (v *feedbackView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.busy {
		return nil
	}
	key := msg.String()

	if v.mode == feedbackList {
		switch key {
		case "up", "k":
			if v.selection > 0 {
				v.selection--
			}
		case "down", "j":
			if v.selection < len(v.entries)-1 {
				v.selection++
			}
		case "n":
			v.beginCompose()
		case "i":
			v.setEntryStatus(task.FeedbackImplemented)
		case "d":
			v.setEntryStatus(task.FeedbackDismissed)
		case "p":
			v.setEntryStatus(task.FeedbackPending)
		}
		return nil
	}

	switch key {
	case "esc":
		v.mode = feedbackList
		v.input.Blur()
		v.app.setStatus("Feedback entry cancelled")
		return nil
	case "r":
		if v.lastErr != nil && v.input.Value() == "" {
			v.lastErr = nil
			return v.understandCmd(v.retryInput)
		}
	case "enter":
		return v.submit()
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *feedbackView) beginCompose() {
	v.mode = feedbackCompose
	v.draftText = ""
	v.understanding = ""
	v.history = nil
	v.lastErr = nil
	v.input.SetValue("")
	v.input.Focus()
}

func (v *feedbackView) setEntryStatus(status task.FeedbackStatus) {
	if v.selection >= len(v.entries) {
		return
	}
	entry := v.entries[v.selection]
	if err := v.app.store.UpdateFeedbackStatus(entry.ID, status); err != nil {
		v.app.setStatus(err.Error())
		return
	}
	v.app.logInfo("Feedback %s marked %s", entry.ID, status)
	v.reload()
	v.app.setStatus(fmt.Sprintf("Marked %s", status))
}

func (v *feedbackView) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	v.input.SetValue("")

	switch v.mode {
	case feedbackCompose:
		if text == "" {
			v.app.setStatus("Describe what should change, or press esc")
			return nil
		}
		v.draftText = text
		if !v.app.requireAI() {
			// No AI: file the note as written.
			return v.save()
		}
		return v.understandCmd(text)

	case feedbackConfirm:
		switch strings.ToLower(text) {
		case "y", "yes":
			return v.save()
		case "":
			v.app.setStatus("Answer y to file it, or type a clarification")
			return nil
		default:
			// A clarification; run another understanding round.
			return v.understandCmd(text)
		}
	}
	return nil
}

func (v *feedbackView) understandCmd(input string) tea.Cmd {
	v.busy = true
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	call := func() tea.Msg {
		defer cancel()
		understanding, err := client.Understand(ctx, input)
		return feedbackUnderstoodMsg{input: input, understanding: understanding, err: err}
	}
	return tea.Batch(v.spinner.Tick, call)
}

func (v *feedbackView) save() tea.Cmd {
	entry, err := v.app.store.AppendFeedback(task.FeedbackEntry{
		Text:          v.draftText,
		Understanding: v.understanding,
		History:       v.history,
	})
	if err != nil {
		v.app.logError("Save feedback failed: %v", err)
		v.app.setStatus(err.Error())
		return nil
	}
	v.app.logInfo("Feedback recorded (%s)", entry.ID)
	v.mode = feedbackList
	v.input.Blur()
	v.reload()
	v.app.setStatus("Feedback recorded · thank you")
	return nil
}

func (v *feedbackView) View() string {
	if v.busy {
		return fmt.Sprintf("%s Talking to the AI…", v.spinner.View())
	}

	var b strings.Builder
	switch v.mode {
	case feedbackList:
		b.WriteString(questionStyle.Render("Tool feedback") + "\n\n")
		if len(v.entries) == 0 {
			b.WriteString(draftStyle.Render("No feedback yet. Press n to add a note.") + "\n")
		}
		for i, entry := range v.entries {
			marker := "  "
			if i == v.selection {
				marker = "> "
			}
			line := fmt.Sprintf("%s[%s] %s", marker, entry.Status, entry.Text)
			if i == v.selection {
				line = checkSelectedStyle.Render(line)
			} else {
				line = draftStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(hintStyle.Render("\nn=new  i=implemented  d=dismissed  p=pending  esc=back"))

	case feedbackCompose:
		b.WriteString(questionStyle.Render("What should daybreak improve?") + "\n")
		b.WriteString("\n" + v.input.View())
		b.WriteString(hintStyle.Render("\nenter=send  esc=cancel"))

	case feedbackConfirm:
		b.WriteString(questionStyle.Render("Here is my understanding:") + "\n\n")
		b.WriteString(draftStyle.Render(v.understanding) + "\n\n")
		b.WriteString(questionStyle.Render("File it? (y, or type a clarification)") + "\n")
		b.WriteString("\n" + v.input.View())
		b.WriteString(hintStyle.Render("\nenter=answer  esc=cancel"))
	}
	return b.String()
}
