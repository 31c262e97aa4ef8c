package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/store"
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"activity"},
	Short:   "Show the local activity log",
	Long:    `Shows recent checklist mutations (generations, toggles, client changes) recorded locally.`,
	RunE:    runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries to show, newest last") //nolint:mnd // default window
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.ReadLog(cfg.LogPath(), limit)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if entries == nil {
			entries = []store.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	}

	if len(entries) == 0 {
		output.Messagef(os.Stdout, "No activity recorded yet.")
		return nil
	}
	for _, e := range entries {
		line := e.Timestamp.Format("2006-01-02 15:04:05") + "  " + e.Action
		if e.TaskID != "" {
			line += "  " + e.TaskID
		}
		if e.Detail != "" {
			line += "  (" + e.Detail + ")"
		}
		output.Messagef(os.Stdout, "%s", line)
	}
	return nil
}
