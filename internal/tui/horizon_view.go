// internal/tui/horizon_view.go
//
// Year, month, and week goals. The overview shows whatever exists for
// the current date; editing replaces the whole record for one level.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/daybreak/internal/horizon"
)

type horizonMode int

const (
	horizonOverview  horizonMode = iota // Browsing the three levels
	horizonEditTheme                    // Typing the year theme
	horizonEditGoals                    // Typing goals one per line
)

// horizonWeekMsg carries the generated week content back to the view.
type horizonWeekMsg struct {
	content string
	err     error
}

type horizonView struct {
	app   *App
	mode  horizonMode
	input textinput.Model

	ctx   horizon.Context
	level string // "year", "month", or "week"
	theme string
	goals []string
	busy  bool
}

func newHorizonView(app *App) *horizonView {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 200

	return &horizonView{
		app:   app,
		input: input,
		ctx:   horizon.CurrentContext(app.now()),
	}
}

func (v *horizonView) capturesEsc() bool { return v.mode != horizonOverview || v.busy }

func (v *horizonView) goalLimit() int {
	switch v.level {
	case "year":
		return horizon.MaxYearGoals
	case "month":
		return horizon.MaxMonthGoals
	default:
		return horizon.MaxWeekGoals
	}
}

func (v *horizonView) Update(msg tea.Msg) tea.Cmd {
	if week, ok := msg.(horizonWeekMsg); ok {
		v.busy = false
		content := week.content
		if week.err != nil {
			v.app.logWarn("Week plan generation failed, using checkbox fallback: %v", week.err)
			content = horizon.DefaultWeekContent(v.goals)
		}
		return v.saveWeek(content)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.mode != horizonOverview {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		return nil
	}

	if v.busy {
		return nil
	}

	if v.mode == horizonOverview {
		switch key.String() {
		case "y":
			v.beginEdit("year")
		case "m":
			v.beginEdit("month")
		case "w":
			v.beginEdit("week")
		}
		return nil
	}

	switch key.String() {
	case "esc":
		v.mode = horizonOverview
		v.input.Blur()
		v.app.setStatus("Edit cancelled")
		return nil
	case "enter":
		return v.submit()
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *horizonView) beginEdit(level string) {
	v.level = level
	v.theme = ""
	v.goals = nil
	v.input.SetValue("")
	v.input.Focus()
	if level == "year" {
		v.mode = horizonEditTheme
	} else {
		v.mode = horizonEditGoals
	}
}

func (v *horizonView) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	v.input.SetValue("")

	if v.mode == horizonEditTheme {
		if text == "" {
			v.app.setStatus("The year needs a theme")
			return nil
		}
		v.theme = text
		v.mode = horizonEditGoals
		return nil
	}

	if text != "" {
		v.goals = append(v.goals, text)
		if len(v.goals) < v.goalLimit() {
			return nil
		}
		// Hit the cap; save what we have.
	} else if len(v.goals) == 0 {
		v.app.setStatus("Add at least one goal, or press esc")
		return nil
	}
	return v.save()
}

func (v *horizonView) save() tea.Cmd {
	var err error
	switch v.level {
	case "year":
		err = v.app.horizons.SaveYearPlan(&horizon.YearPlan{
			Year:  v.ctx.Year,
			Theme: v.theme,
			Goals: v.goals,
		})
	case "month":
		err = v.app.horizons.SaveMonthPlan(&horizon.MonthPlan{
			Year:  v.ctx.Year,
			Month: v.ctx.Month,
			Goals: v.goals,
		})
	case "week":
		if v.app.ai == nil {
			return v.saveWeek(horizon.DefaultWeekContent(v.goals))
		}
		v.busy = true
		return v.generateWeekCmd()
	}
	if err != nil {
		v.app.logError("Save %s plan failed: %v", v.level, err)
		v.app.setStatus(err.Error())
		return nil
	}
	v.finishEdit()
	return nil
}

// generateWeekCmd expands the week goals with the AI, framed by the year
// theme and month goals when those plans exist.
func (v *horizonView) generateWeekCmd() tea.Cmd {
	var theme string
	if year, err := v.app.horizons.LoadYearPlan(v.ctx.Year); err == nil {
		theme = year.Theme
	}
	var monthGoals []string
	if month, err := v.app.horizons.LoadMonthPlan(v.ctx.Year, v.ctx.Month); err == nil {
		monthGoals = month.Goals
	}
	weekRange := horizon.FormatWeekRange(v.ctx.WeekStart, v.ctx.WeekEnd)
	goals := v.goals
	client := v.app.ai
	ctx, cancel := v.app.aiContext()
	return func() tea.Msg {
		defer cancel()
		content, err := client.GenerateWeekPlan(ctx, theme, monthGoals, goals, weekRange)
		return horizonWeekMsg{content: content, err: err}
	}
}

func (v *horizonView) saveWeek(content string) tea.Cmd {
	err := v.app.horizons.SaveWeekPlan(&horizon.WeekPlan{
		Year:    v.ctx.WeekYear,
		Week:    v.ctx.Week,
		Goals:   v.goals,
		Content: content,
	})
	if err != nil {
		v.app.logError("Save week plan failed: %v", err)
		v.app.setStatus(err.Error())
		return nil
	}
	v.finishEdit()
	return nil
}

func (v *horizonView) finishEdit() {
	v.app.logInfo("Saved %s plan (%d goals)", v.level, len(v.goals))
	v.mode = horizonOverview
	v.input.Blur()
	v.app.setStatus(fmt.Sprintf("Saved the %s plan", v.level))
}

func (v *horizonView) View() string {
	if v.busy {
		return "Generating the week plan…"
	}

	var b strings.Builder
	switch v.mode {
	case horizonOverview:
		b.WriteString(questionStyle.Render("Horizon plans") + "\n\n")
		b.WriteString(v.renderLevel("Year", v.yearLines()))
		b.WriteString(v.renderLevel("Month", v.monthLines()))
		b.WriteString(v.renderLevel(fmt.Sprintf("Week %d", v.ctx.Week), v.weekLines()))
		b.WriteString(hintStyle.Render("\ny=edit year  m=edit month  w=edit week  esc=back"))

	case horizonEditTheme:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(fmt.Sprintf("Theme for %d?", v.ctx.Year)))
		b.WriteString("\n" + v.input.View())
		b.WriteString(hintStyle.Render("\nenter=set theme  esc=cancel"))

	case horizonEditGoals:
		fmt.Fprintf(&b, "%s\n", questionStyle.Render(
			fmt.Sprintf("Goals for the %s (%d/%d) · empty line finishes", v.level, len(v.goals), v.goalLimit())))
		for _, goal := range v.goals {
			b.WriteString(draftStyle.Render("- "+goal) + "\n")
		}
		b.WriteString("\n" + v.input.View())
		b.WriteString(hintStyle.Render("\nenter=add goal  esc=cancel"))
	}
	return b.String()
}

func (v *horizonView) renderLevel(title string, lines []string) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(title) + "\n")
	if len(lines) == 0 {
		b.WriteString(mutedStyle.Render("  nothing yet") + "\n\n")
		return b.String()
	}
	for _, line := range lines {
		b.WriteString(draftStyle.Render("  "+line) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (v *horizonView) yearLines() []string {
	plan, err := v.app.horizons.LoadYearPlan(v.ctx.Year)
	if err != nil {
		return nil
	}
	lines := []string{"Theme: " + plan.Theme}
	for _, goal := range plan.Goals {
		lines = append(lines, "- "+goal)
	}
	return lines
}

func (v *horizonView) monthLines() []string {
	plan, err := v.app.horizons.LoadMonthPlan(v.ctx.Year, v.ctx.Month)
	if err != nil {
		return nil
	}
	var lines []string
	for _, goal := range plan.Goals {
		lines = append(lines, "- "+goal)
	}
	return lines
}

func (v *horizonView) weekLines() []string {
	plan, err := v.app.horizons.LoadWeekPlan(v.ctx.WeekYear, v.ctx.Week)
	if err != nil {
		return nil
	}
	lines := []string{plan.Range}
	for _, goal := range plan.Goals {
		lines = append(lines, "- "+goal)
	}
	return lines
}
