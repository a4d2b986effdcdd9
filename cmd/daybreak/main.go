// cmd/daybreak/main.go
//
// This is the entry point for the daybreak CLI.
//
// Flow:
// 1. Resolve ~/.daybreak and create the directory structure on first run
// 2. Load config.yaml
// 3. Launch the TUI, optionally jumping straight into a workflow:
//    daybreak            -> main menu
//    daybreak plan       -> morning planning
//    daybreak check      -> midday checklist
//    daybreak summarize  -> evening review
//    daybreak feedback   -> tool feedback
//    daybreak horizon    -> year/month/week plans
//    daybreak calendar   -> browse past days

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/daybreak/internal/config"
	"github.com/kingrea/daybreak/internal/tui"
)

func main() {
	home, err := config.DefaultHome()
	if err != nil {
		fatal(err)
	}
	if err := config.InitAppDir(home); err != nil {
		fatal(err)
	}

	cfg, err := config.New(home)
	if err != nil {
		fatal(err)
	}

	app, err := tui.NewApp(cfg)
	if err != nil {
		fatal(err)
	}

	// An optional subcommand skips the menu.
	if len(os.Args) > 1 {
		if _, err := app.StartWorkflow(os.Args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			fmt.Fprintln(os.Stderr, "Workflows: plan, check, summarize, feedback, horizon, calendar")
			os.Exit(2)
		}
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatal(fmt.Errorf("run TUI: %w", err))
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
