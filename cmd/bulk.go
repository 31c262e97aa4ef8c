package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk INDUSTRY [INDUSTRY...]",
	Short: "Generate checklists for multiple industries",
	Long: `Generates one checklist per industry, sequentially and in the given order.
An industry whose generation fails is skipped with a warning; the rest
proceed. With --merge the results are concatenated into a single checklist;
otherwise each industry keeps its own list, browsable with --industry flags
and the dashboard's [ and ] keys.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBulk,
}

func init() {
	addProfileFlags(bulkCmd)
	bulkCmd.Flags().Bool("merge", false, "merge all results into one checklist")
	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	merge, _ := cmd.Flags().GetBool("merge")
	base := profileFromFlags(cmd, cfg)

	progress := func(current, total int, status string) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, total, status)
	}

	if err := st.GenerateBulk(context.Background(), args, base, merge, progress); err != nil {
		return err
	}

	snap := st.Snapshot()
	if outputFormat() == output.FormatJSON {
		if merge {
			return output.JSON(os.Stdout, snap.Tasks)
		}
		return output.JSON(os.Stdout, snap.BulkTasks)
	}

	if merge {
		output.Messagef(os.Stdout, "Generated merged checklist: %d tasks from %d industries",
			len(snap.Tasks), len(args))
		output.TaskTable(os.Stdout, snap.Tasks)
		return nil
	}

	for _, industry := range args {
		tasks, ok := snap.BulkTasks[industry]
		if !ok {
			continue
		}
		output.Messagef(os.Stdout, "\n%s: %d tasks (~%dh)", industry, len(tasks), totalHours(tasks))
	}
	output.Messagef(os.Stdout, "\nUse `ksef-checklist list --industry NAME` to inspect one result.")
	return nil
}
