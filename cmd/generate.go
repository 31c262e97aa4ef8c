package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/config"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/profile"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a checklist for a company profile",
	Long: `Generates a personalized KSeF implementation checklist from the company
profile. The previous checklist is replaced; on failure nothing changes.

Profile fields not given as flags fall back to the configured defaults.`,
	RunE: runGenerate,
}

func init() {
	addProfileFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

// addProfileFlags registers the shared company-profile flags.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("industry", "i", "", "industry, e.g. transport, construction (required)")
	cmd.Flags().String("size", "", "company size ("+strings.Join(profile.Sizes(), ", ")+")")
	cmd.Flags().String("erp", "", "ERP system class ("+strings.Join(profile.ERPSystems(), ", ")+")")
	cmd.Flags().String("invoices", "", "monthly invoice volume ("+strings.Join(profile.InvoiceBuckets(), ", ")+")")
	cmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "sector":
			name = "industry"
		case "volume":
			name = "invoices"
		}
		return pflag.NormalizedName(name)
	})
}

// profileFromFlags builds a profile from config defaults overlaid with flags.
func profileFromFlags(cmd *cobra.Command, cfg *config.Config) profile.Profile {
	p := cfg.DefaultProfile()
	if v, _ := cmd.Flags().GetString("industry"); v != "" {
		p.Industry = v
	}
	if v, _ := cmd.Flags().GetString("size"); v != "" {
		p.CompanySize = v
	}
	if v, _ := cmd.Flags().GetString("erp"); v != "" {
		p.ERPSystem = v
	}
	if v, _ := cmd.Flags().GetString("invoices"); v != "" {
		p.MonthlyInvoices = v
	}
	return p
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	p := profileFromFlags(cmd, cfg)
	if p.Industry == "" {
		return clierr.New(clierr.InvalidInput, "an industry is required; pass --industry")
	}
	if err := st.Generate(context.Background(), p); err != nil {
		return err
	}

	snap := st.Snapshot()
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, snap.Tasks)
	}

	output.Messagef(os.Stdout, "Generated %d tasks for industry %q (~%dh of work)",
		len(snap.Tasks), p.Industry, totalHours(snap.Tasks))
	output.TaskTable(os.Stdout, snap.Tasks)
	return nil
}

func totalHours(tasks []task.Task) int {
	sum := 0
	for _, t := range tasks {
		sum += t.EstimatedHours
	}
	return sum
}
