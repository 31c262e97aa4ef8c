package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/store"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show checklist completion",
	Long:  `Shows completion counts overall and per section for the current checklist.`,
	RunE:  runProgress,
}

func init() {
	progressCmd.Flags().String("industry", "", "bulk mode: report one industry's checklist")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	snap := st.Snapshot()
	industry, _ := cmd.Flags().GetString("industry")
	tasks, err := resolveTasks(snap, industry)
	if err != nil {
		return err
	}

	p := task.Summarize(tasks)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, p)
	}

	output.ProgressTable(os.Stdout, progressLabel(snap, industry), p)
	return nil
}

func progressLabel(snap store.Snapshot, industry string) string {
	if industry != "" {
		return "Industry: " + industry
	}
	if c, ok := snap.ActiveClient(); ok {
		return "Client: " + c.Name
	}
	return "KSeF readiness"
}
