package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/techdufus/axon/internal/config"
	"github.com/techdufus/axon/internal/history"
	"github.com/techdufus/axon/internal/session"
	"github.com/techdufus/axon/internal/ui"
)

// Run wires config, history, and (optionally) a saved session into the
// event loop, and persists both on the way out.
func Run(cfg *config.Config, warnings, sessionName string) error {
	histPath, err := config.HistoryPath()
	if err != nil {
		return fmt.Errorf("resolve history path: %w", err)
	}
	hist, err := history.Load(histPath, 0)
	if err != nil {
		// a corrupt history file is not fatal; start fresh and say so
		warnings += fmt.Sprintf("  history: %v (starting empty)\n", err)
		hist = history.NewLog(0)
	}

	model := ui.NewModel(cfg, hist, sessionName, warnings)

	if sessionName != "" {
		saved, err := session.Load(sessionName)
		if err != nil {
			return fmt.Errorf("load session %q: %w", sessionName, err)
		}
		model.RestoreSession(saved)
	}

	defer model.Cleanup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	output := termenv.NewOutput(os.Stdout)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithOutput(output),
	)

	go func() {
		<-sigChan
		model.Cleanup()
		program.Quit()
	}()

	_, runErr := program.Run()

	if err := hist.Save(histPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving history: %v\n", err)
	}
	if s := model.SessionState(); s != nil {
		if err := s.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving session: %v\n", err)
		}
	}

	return runErr
}
