// internal/tui/dashboard.go
//
// The framed layout around every screen: header, main area, the day
// panel on the right (plan progress, streak, horizon context), and the
// journal tail at the bottom.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/daybreak/internal/horizon"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F7B801")).
			MarginBottom(1)
	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444444")).
				Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	logBodyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

const progressBarWidth = 18

func (a *App) renderBoard(mainContent string, leftWidth, rightWidth int) string {
	header := headerStyle.Render("◐ DAYBREAK")
	leftBox := panelBorderStyle.
		Width(max(20, leftWidth)).
		Render(a.renderMainArea(mainContent, leftWidth-4))

	var body string
	if rightWidth > 0 {
		rightBox := panelBorderStyle.
			Width(max(20, rightWidth)).
			Render(a.renderDayPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}

	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footerStyle.Render(a.statusMsg))
	return strings.Join(sections, "\n")
}

func (a *App) renderMainArea(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		content = "Ready when you are."
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(content)
}

func (a *App) renderDayPanel(width int) string {
	stats := a.store.TodayStats()
	lines := []string{panelTitleStyle.Render(fmt.Sprintf("Today · %s", stats.Date))}

	if stats.HasPlan {
		lines = append(lines,
			fmt.Sprintf("Plan: %d job(s)", stats.Total),
			renderProgressBar(stats.Done, stats.Total),
		)
	} else {
		lines = append(lines, mutedStyle.Render("No plan yet"))
	}
	if stats.HasLog {
		lines = append(lines, "Log: written ✓")
	} else {
		lines = append(lines, mutedStyle.Render("Log: not yet"))
	}
	if streak := a.store.Streak(); streak > 0 {
		lines = append(lines, fmt.Sprintf("Streak: %d day(s)", streak))
	}

	lines = append(lines, "", panelTitleStyle.Render("Horizon"))
	lines = append(lines, a.renderHorizonSummary()...)

	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderHorizonSummary() []string {
	ctx := horizon.CurrentContext(a.now())
	var lines []string
	if year, err := a.horizons.LoadYearPlan(ctx.Year); err == nil && year.Theme != "" {
		lines = append(lines, fmt.Sprintf("%d: %s", year.Year, year.Theme))
	}
	if month, err := a.horizons.LoadMonthPlan(ctx.Year, ctx.Month); err == nil && len(month.Goals) > 0 {
		lines = append(lines, fmt.Sprintf("Month: %d goal(s)", len(month.Goals)))
	}
	if week, err := a.horizons.LoadWeekPlan(ctx.WeekYear, ctx.Week); err == nil && len(week.Goals) > 0 {
		lines = append(lines, fmt.Sprintf("Week %d: %d goal(s)", week.Week, len(week.Goals)))
	}
	if len(lines) == 0 {
		lines = append(lines, mutedStyle.Render("No horizon plans yet"))
	}
	return lines
}

func renderProgressBar(done, total int) string {
	if total <= 0 {
		return ""
	}
	filled := done * progressBarWidth / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	return fmt.Sprintf("%s %d/%d", bar, done, total)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := panelTitleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := logBodyStyle.Render(strings.Join(lines, "\n"))
	return panelBorderStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}
