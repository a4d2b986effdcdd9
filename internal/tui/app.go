// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for daybreak.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/daybreak/internal/ai"
	"github.com/kingrea/daybreak/internal/config"
	"github.com/kingrea/daybreak/internal/horizon"
	"github.com/kingrea/daybreak/internal/logbook"
	"github.com/kingrea/daybreak/internal/store"
	"github.com/kingrea/daybreak/internal/task"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMenu      appState = iota // Main menu with the daily workflows
	statePlan                      // Morning planning workflow
	stateCheck                     // Midday checklist
	stateSummarize                 // Evening review and summary
	stateFeedback                  // Tool feedback entries
	stateHorizon                   // Year/month/week plans
	stateCalendar                  // Browse past plans and logs
)

const aiCallTimeout = 3 * time.Minute

// aiClient is the slice of the AI client the views use. Tests inject a
// stub; production wires *ai.Client.
type aiClient interface {
	GeneratePlan(ctx context.Context, jobs []*task.Job) (string, error)
	GenerateSummary(ctx context.Context, plan *task.Plan, reviews []task.Review) (string, error)
	RefinePlan(ctx context.Context, current, feedback string) (string, error)
	GenerateWeekPlan(ctx context.Context, theme string, monthGoals, weekGoals []string, weekRange string) (string, error)
	Chat(ctx context.Context, history []ai.Message, message string) (string, []ai.Message, error)
	Understand(ctx context.Context, description string) (string, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithAIClient overrides the AI client used by the workflows.
func WithAIClient(client aiClient) AppOption {
	return func(a *App) {
		if client != nil {
			a.ai = client
		}
	}
}

// WithClock overrides the clock used for dates and timestamps.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.now = clock
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state    appState
	config   *config.Config
	store    *store.Store
	horizons *horizon.Store
	logbook  *logbook.Logbook
	ai       aiClient
	now      func() time.Time

	planView     *planView
	checkView    *checkView
	summaryView  *summaryView
	feedbackView *feedbackView
	horizonView  *horizonView
	calendarView *calendarView

	// UI components
	mainMenu      list.Model
	statusMsg     string
	lastLogStatus string

	// Window size (we get this from bubbletea)
	width  int
	height int

	// initCmd runs when the program starts; set by StartWorkflow.
	initCmd tea.Cmd
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance rooted at the daybreak home directory.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	lb, err := logbook.New(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("tui: open journal: %w", err)
	}

	app := &App{
		state:    stateMenu,
		config:   cfg,
		horizons: horizon.NewStore(cfg.DataDir()),
		logbook:  lb,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.store = store.New(cfg.DataDir(), store.WithClock(func() time.Time { return app.now() }))

	if app.ai == nil {
		if key, err := cfg.APIKey(); err == nil {
			app.ai = ai.New(key, cfg.AI())
		} else {
			app.logWarn("AI unavailable: %v", err)
		}
	}

	mainMenu := list.New(app.buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "◐ DAYBREAK"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	app.mainMenu = mainMenu

	lb.Info("Session opened · %s", app.store.Today())
	return app, nil
}

// buildMainMenu creates the main menu items based on the day's state.
func (a *App) buildMainMenu() []list.Item {
	today := a.store.Today()
	items := []list.Item{}

	if a.store.PlanExists(today) {
		items = append(items, menuItem{
			title: "Review Today's Plan",
			desc:  "Look over this morning's plan or redo it",
		})
		items = append(items, menuItem{
			title: "Check Progress",
			desc:  "Tick off what got done so far",
		})
	} else {
		items = append(items, menuItem{
			title: "Plan the Day",
			desc:  "Walk through your job categories and generate a plan",
		})
	}

	if a.store.LogExists(today) {
		items = append(items, menuItem{
			title: "Review Today's Log",
			desc:  "Re-read this evening's summary",
		})
	} else {
		items = append(items, menuItem{
			title: "Summarize the Day",
			desc:  "Review each job and generate an evening summary",
		})
	}

	items = append(items,
		menuItem{title: "Horizon Plans", desc: "Year, month, and week goals"},
		menuItem{title: "Calendar", desc: "Browse past plans and logs"},
		menuItem{title: "Tool Feedback", desc: "Tell daybreak what to improve"},
		menuItem{title: "Exit", desc: "Quit daybreak"},
	)
	return items
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func (a *App) logProgress(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == a.lastLogStatus {
		return
	}
	a.lastLogStatus = status
	a.logInfo(status)
}

func (a *App) setStatus(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	a.statusMsg = message
	a.logProgress(message)
}

// aiContext returns the context AI commands run under.
func (a *App) aiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), aiCallTimeout)
}

// requireAI reports whether an AI client is wired, setting a status
// message when it is not.
func (a *App) requireAI() bool {
	if a.ai != nil {
		return true
	}
	a.setStatus(fmt.Sprintf("AI unavailable · export %s and restart", config.EnvAPIKey))
	return false
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	cmd := a.initCmd
	a.initCmd = nil
	return cmd
}

// workflowDoneMsg returns control to the menu when a view finishes.
type workflowDoneMsg struct {
	status string
}

func finishWorkflow(status string) tea.Cmd {
	return func() tea.Msg { return workflowDoneMsg{status: status} }
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, a.forwardToView(msg)

	case workflowDoneMsg:
		return a.returnToMenu(msg.status)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMenu {
				a.logInfo("Session closed")
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateMenu && !a.viewCapturesEsc() {
				return a.returnToMenu("")
			}
		case "enter":
			if a.state == stateMenu {
				return a.handleMenuSelection()
			}
		}
	}

	if a.state == stateMenu {
		var cmd tea.Cmd
		a.mainMenu, cmd = a.mainMenu.Update(msg)
		return a, cmd
	}
	return a, a.forwardToView(msg)
}

func (a *App) forwardToView(msg tea.Msg) tea.Cmd {
	switch a.state {
	case statePlan:
		if a.planView != nil {
			return a.planView.Update(msg)
		}
	case stateCheck:
		if a.checkView != nil {
			return a.checkView.Update(msg)
		}
	case stateSummarize:
		if a.summaryView != nil {
			return a.summaryView.Update(msg)
		}
	case stateFeedback:
		if a.feedbackView != nil {
			return a.feedbackView.Update(msg)
		}
	case stateHorizon:
		if a.horizonView != nil {
			return a.horizonView.Update(msg)
		}
	case stateCalendar:
		if a.calendarView != nil {
			return a.calendarView.Update(msg)
		}
	}
	return nil
}

// viewCapturesEsc lets a view keep esc for its own input fields.
func (a *App) viewCapturesEsc() bool {
	switch a.state {
	case statePlan:
		return a.planView != nil && a.planView.capturesEsc()
	case stateSummarize:
		return a.summaryView != nil && a.summaryView.capturesEsc()
	case stateFeedback:
		return a.feedbackView != nil && a.feedbackView.capturesEsc()
	case stateHorizon:
		return a.horizonView != nil && a.horizonView.capturesEsc()
	case stateCalendar:
		return a.calendarView != nil && a.calendarView.open
	}
	return false
}

// handleMenuSelection processes menu item selection
func (a *App) handleMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch item.title {
	case "Plan the Day", "Review Today's Plan":
		a.logInfo("Menu · planning selected")
		return a, a.startPlan()
	case "Check Progress":
		a.logInfo("Menu · check selected")
		return a, a.startCheck()
	case "Summarize the Day", "Review Today's Log":
		a.logInfo("Menu · summarize selected")
		return a, a.startSummarize()
	case "Horizon Plans":
		a.logInfo("Menu · horizon selected")
		return a, a.startHorizon()
	case "Calendar":
		a.logInfo("Menu · calendar selected")
		return a, a.startCalendar()
	case "Tool Feedback":
		a.logInfo("Menu · feedback selected")
		return a, a.startFeedback()
	case "Exit":
		a.logInfo("Session closed")
		return a, tea.Quit
	}
	return a, nil
}

// StartWorkflow launches a named workflow directly, skipping the menu.
// Used by the CLI subcommands; the returned command also runs on Init.
func (a *App) StartWorkflow(name string) (tea.Cmd, error) {
	var cmd tea.Cmd
	switch name {
	case "plan":
		cmd = a.startPlan()
	case "check":
		cmd = a.startCheck()
	case "summarize":
		cmd = a.startSummarize()
	case "feedback":
		cmd = a.startFeedback()
	case "horizon":
		cmd = a.startHorizon()
	case "calendar":
		cmd = a.startCalendar()
	default:
		return nil, fmt.Errorf("tui: unknown workflow %q", name)
	}
	a.initCmd = cmd
	return cmd, nil
}

func (a *App) startPlan() tea.Cmd {
	a.state = statePlan
	a.planView = newPlanView(a)
	return a.planView.Init()
}

func (a *App) startCheck() tea.Cmd {
	view, err := newCheckView(a)
	if err != nil {
		a.setStatus(err.Error())
		a.state = stateMenu
		return nil
	}
	a.state = stateCheck
	a.checkView = view
	return nil
}

func (a *App) startSummarize() tea.Cmd {
	view, err := newSummaryView(a)
	if err != nil {
		a.setStatus(err.Error())
		a.state = stateMenu
		return nil
	}
	a.state = stateSummarize
	a.summaryView = view
	return view.Init()
}

func (a *App) startFeedback() tea.Cmd {
	a.state = stateFeedback
	a.feedbackView = newFeedbackView(a)
	return nil
}

func (a *App) startHorizon() tea.Cmd {
	a.state = stateHorizon
	a.horizonView = newHorizonView(a)
	return nil
}

func (a *App) startCalendar() tea.Cmd {
	a.state = stateCalendar
	a.calendarView = newCalendarView(a)
	return nil
}

// returnToMenu transitions back to the main menu.
func (a *App) returnToMenu(status string) (tea.Model, tea.Cmd) {
	a.state = stateMenu
	a.planView = nil
	a.checkView = nil
	a.summaryView = nil
	a.feedbackView = nil
	a.horizonView = nil
	a.calendarView = nil
	if status != "" {
		a.setStatus(status)
	}
	// Refresh menu items (the day's state may have changed).
	a.mainMenu.SetItems(a.buildMainMenu())
	return a, nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(30, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}
	if a.state == stateMenu {
		a.mainMenu.SetSize(max(20, leftWidth-4), max(10, a.height-12))
	}

	var content string
	switch a.state {
	case stateMenu:
		content = a.mainMenu.View()
	case statePlan:
		content = a.planView.View()
	case stateCheck:
		content = a.checkView.View()
	case stateSummarize:
		content = a.summaryView.View()
	case stateFeedback:
		content = a.feedbackView.View()
	case stateHorizon:
		content = a.horizonView.View()
	case stateCalendar:
		content = a.calendarView.View()
	}
	return a.renderBoard(content, leftWidth, rightWidth)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
