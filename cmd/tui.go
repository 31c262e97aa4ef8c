package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/tui"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	model := tui.NewDashboard(st, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, cfg.StatePath(), p)

	_, err = p.Run()
	return err
}

// startTUIWatcher refreshes the dashboard when another process writes the
// state file (an import, or a second terminal toggling tasks).
func startTUIWatcher(ctx context.Context, statePath string, p *tea.Program) {
	w, err := watcher.New(statePath, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
