// internal/tui/check_view.go
//
// The midday checklist: today's jobs flattened with toggleable done
// marks. Saving writes the marks back into the plan file.

package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/daybreak/internal/review"
	"github.com/kingrea/daybreak/internal/store"
)

var (
	checkDoneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	checkPendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	checkSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
)

type checkView struct {
	app       *App
	checklist *review.Checklist
	selection int

	// dates holds the picker shown when today has no plan yet.
	dates []string
}

func newCheckView(app *App) (*checkView, error) {
	view := &checkView{app: app}
	plan, err := app.store.LoadPlan(app.store.Today())
	if err == nil {
		view.checklist = review.NewChecklist(plan)
		return view, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// No plan today; offer past plans newest first.
	dates, err := app.store.ListPlanDates()
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no plans saved yet · plan the day first")
	}
	view.dates = dates
	return view, nil
}

func (v *checkView) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if v.checklist == nil {
		return v.handlePickerKey(key)
	}
	rows := v.checklist.Rows()
	switch key.String() {
	case "up", "k":
		if v.selection > 0 {
			v.selection--
		}
	case "down", "j":
		if v.selection < len(rows)-1 {
			v.selection++
		}
	case " ", "x":
		v.checklist.Toggle(v.selection)
	case "enter", "s":
		return v.save()
	}
	return nil
}

func (v *checkView) handlePickerKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		if v.selection > 0 {
			v.selection--
		}
	case "down", "j":
		if v.selection < len(v.dates)-1 {
			v.selection++
		}
	case "enter":
		date := v.dates[v.selection]
		plan, err := v.app.store.LoadPlan(date)
		if err != nil {
			v.app.setStatus(err.Error())
			return nil
		}
		v.checklist = review.NewChecklist(plan)
		v.selection = 0
		v.app.logInfo("Checking plan from %s", date)
	}
	return nil
}

func (v *checkView) save() tea.Cmd {
	v.checklist.Finish(v.app.now())
	plan := v.checklist.Plan()
	if err := v.app.store.SavePlan(plan); err != nil {
		v.app.logError("Save check failed: %v", err)
		v.app.setStatus(err.Error())
		return nil
	}
	done, total := v.checklist.Progress()
	v.app.logInfo("Progress checked for %s (%d/%d done)", plan.Date, done, total)
	return finishWorkflow(fmt.Sprintf("Progress saved · %d/%d done", done, total))
}

func (v *checkView) View() string {
	if v.checklist == nil {
		var b strings.Builder
		b.WriteString(questionStyle.Render("No plan for today · pick a day to check") + "\n\n")
		for i, date := range v.dates {
			line := "  " + date
			if i == v.selection {
				line = checkSelectedStyle.Render("> " + date)
			} else {
				line = checkPendingStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(hintStyle.Render("\nenter=open  esc=back to menu"))
		return b.String()
	}

	rows := v.checklist.Rows()
	if len(rows) == 0 {
		return "The plan has no jobs to check."
	}
	var b strings.Builder
	done, total := v.checklist.Progress()
	fmt.Fprintf(&b, "%s\n\n", questionStyle.Render(fmt.Sprintf("Check progress · %d/%d done", done, total)))
	for i, row := range rows {
		mark := "[ ]"
		style := checkPendingStyle
		if v.checklist.Done(i) {
			mark = "[x]"
			style = checkDoneStyle
		}
		indent := strings.Repeat("  ", row.Depth)
		line := fmt.Sprintf("%s%s %s", indent, mark, row.Job.Name)
		if i == v.selection {
			line = checkSelectedStyle.Render("> " + line)
		} else {
			line = style.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(hintStyle.Render("\nspace=toggle  enter=save  esc=back without saving"))
	return b.String()
}
