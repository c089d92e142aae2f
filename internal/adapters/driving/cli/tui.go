package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nuclom/search/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal search interface.

Controls:
  enter    - Search
  ↑/k, ↓/j - Navigate results
  n, /     - New search
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Recover to surface stack traces instead of a corrupted terminal
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := ensureServices(); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured
	}

	// The TUI is long-running, so config edits are picked up live.
	watchCtx, watchCancel := context.WithCancel(cmd.Context())
	defer watchCancel()
	startConfigWatch(watchCtx)

	model := tui.NewModel(searchService, flagOrg).WithContext(cmd.Context())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
