// Package cmd implements the ksef-checklist CLI commands.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/agent"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/config"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/generator"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "ksef-checklist",
	Short: "KSeF 2.0 implementation checklist builder",
	Long: `ksef-checklist builds and tracks a personalized checklist for the Polish
KSeF 2.0 e-invoicing rollout. Checklists are generated per company profile,
tracked per client, and optionally mirrored to a local automation agent.
Just run ksef-checklist to open the dashboard.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to data directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError — exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("KSEF_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error — wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the absolute path to the data directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	return config.DefaultDir()
}

// loadConfig resolves the data directory and loads its config. A missing
// config file yields defaults, so first runs need no setup.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// openStore builds the store from config: persisted snapshot, generator
// backend, and the best-effort agent notifier. Callers must Close it so
// detached agent notifications get their grace period.
func openStore(cfg *config.Config) *store.Store {
	st := store.Open(storePaths(cfg), newGenerator(cfg))
	st.SetNotifier(newAgentClient(cfg))
	return st
}

func storePaths(cfg *config.Config) store.Paths {
	return store.Paths{
		State: cfg.StatePath(),
		Lock:  cfg.LockPath(),
		Log:   cfg.LogPath(),
	}
}

func newGenerator(cfg *config.Config) generator.Generator {
	apiKey := os.Getenv(cfg.Generator.APIKeyEnv)
	return generator.NewGeminiClient(apiKey, cfg.Generator.Model, cfg.Generator.BaseURL)
}

func newAgentClient(cfg *config.Config) *agent.Client {
	return agent.New(cfg.Agent.BaseURL, cfg.AgentTimeout())
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// confirm prompts for a y/N answer on the terminal. Non-TTY stdin returns
// a CONFIRMATION_REQUIRED error so scripts must pass --yes explicitly.
func confirm(prompt string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(os.Stderr, "Canceled.")
		return &clierr.SilentError{Code: 0}
	}
	return nil
}
