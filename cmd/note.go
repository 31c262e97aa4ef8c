package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var noteCmd = &cobra.Command{
	Use:   "note ID TEXT",
	Short: "Attach a note to a task",
	Long: `Replaces the note on a task with the given text, verbatim.
An empty TEXT clears the note.`,
	Args: cobra.ExactArgs(2),
	RunE: runNote,
}

func init() {
	noteCmd.Flags().String("industry", "", "bulk mode: annotate within one industry's checklist")
	rootCmd.AddCommand(noteCmd)
}

func runNote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	industry, _ := cmd.Flags().GetString("industry")
	changed, err := st.UpdateTaskNote(args[0], args[1], industry)
	if err != nil {
		return err
	}
	if !changed {
		return clierr.Newf(clierr.TaskNotFound, "task %q not found", args[0])
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"id": args[0], "note": args[1]})
	}

	if args[1] == "" {
		output.Messagef(os.Stdout, "Cleared note on task %s", args[0])
	} else {
		output.Messagef(os.Stdout, "Updated note on task %s", args[0])
	}
	return nil
}
