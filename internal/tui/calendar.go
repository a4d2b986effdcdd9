// internal/tui/calendar.go
//
// Browse past days. The left list holds every date with a saved plan;
// opening a date shows the plan and, when present, the log in a
// scrollable viewport.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/daybreak/internal/store"
)

type calendarView struct {
	app       *App
	dates     []string
	selection int

	open     bool
	openDate string
	content  viewport.Model
}

func newCalendarView(app *App) *calendarView {
	dates, err := app.store.ListPlanDates()
	if err != nil {
		app.setStatus(err.Error())
	}
	vp := viewport.New(80, 20)
	return &calendarView{app: app, dates: dates, content: vp}
}

func (v *calendarView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.content.Width = max(40, msg.Width-10)
		v.content.Height = max(10, msg.Height-14)
		return nil
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *calendarView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.open {
		switch msg.String() {
		case "esc", "backspace":
			v.open = false
			return nil
		}
		var cmd tea.Cmd
		v.content, cmd = v.content.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		if v.selection > 0 {
			v.selection--
		}
	case "down", "j":
		if v.selection < len(v.dates)-1 {
			v.selection++
		}
	case "enter":
		v.openSelected()
	}
	return nil
}

func (v *calendarView) openSelected() {
	if v.selection >= len(v.dates) {
		return
	}
	date := v.dates[v.selection]
	v.content.SetContent(v.renderDay(date))
	v.content.GotoTop()
	v.openDate = date
	v.open = true
	v.app.logInfo("Calendar · opened %s", date)
}

func (v *calendarView) renderDay(date string) string {
	var b strings.Builder

	if plan, err := v.app.store.LoadPlan(date); err == nil {
		fmt.Fprintf(&b, "%s\n\n", questionStyle.Render("Plan · "+date))
		if plan.Content != "" {
			b.WriteString(plan.Content + "\n\n")
		}
		for _, job := range plan.Jobs {
			mark := "[ ]"
			if plan.Done[job.Name] {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "%s %s", mark, job.Name)
			if job.CarriedFrom != "" {
				fmt.Fprintf(&b, " (carried from %s)", job.CarriedFrom)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if log, err := v.app.store.LoadLog(date); err == nil {
		b.WriteString(store.RenderLogMarkdown(log))
	} else {
		b.WriteString(mutedStyle.Render("No log for this day.") + "\n")
	}
	return b.String()
}

func (v *calendarView) View() string {
	if v.open {
		var b strings.Builder
		b.WriteString(v.content.View() + "\n")
		b.WriteString(hintStyle.Render("↑/↓=scroll  esc=back to dates"))
		return b.String()
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render("Calendar") + "\n\n")
	if len(v.dates) == 0 {
		b.WriteString(draftStyle.Render("No plans saved yet.") + "\n")
	}
	today := v.app.store.Today()
	for i, date := range v.dates {
		marker := "  "
		if i == v.selection {
			marker = "> "
		}
		line := marker + date
		if date == today {
			line += " · today"
		}
		if v.app.store.LogExists(date) {
			line += " ✓"
		}
		if i == v.selection {
			line = checkSelectedStyle.Render(line)
		} else {
			line = draftStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(hintStyle.Render("\nenter=open  esc=back to menu"))
	return b.String()
}
