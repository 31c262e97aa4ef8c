package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle ID",
	Aliases: []string{"done", "check"},
	Short:   "Toggle a task's completion flag",
	Long: `Flips the completed flag of a task. The change is persisted immediately
and mirrored to the local automation agent on a best-effort basis; the agent
being offline never fails the toggle.`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func init() {
	toggleCmd.Flags().String("industry", "", "bulk mode: toggle within one industry's checklist")
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	industry, _ := cmd.Flags().GetString("industry")
	t, changed, err := st.ToggleTask(args[0], industry)
	if err != nil {
		return err
	}
	if !changed {
		return clierr.Newf(clierr.TaskNotFound, "task %q not found", args[0])
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	state := "pending"
	if t.Completed {
		state = "done"
	}
	output.Messagef(os.Stdout, "Task %s is now %s: %s", t.ID, state, t.Title)
	return nil
}
