package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all checklist data",
	Long:  `Clears tasks, bulk results, clients, and the saved profile. Config is kept.`,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if err := confirm("Erase ALL checklist data?"); err != nil {
			return err
		}
	}

	if err := st.Reset(); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "reset"})
	}

	output.Messagef(os.Stdout, "All checklist data erased.")
	return nil
}
