package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Talk to the local automation agent",
	Long: `Queries and controls the local KSeF automation agent. The agent is
optional; when it is unreachable these commands report it as offline and
nothing else in the tool is affected.`,
}

var agentStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent health",
	RunE:  runAgentStatus,
}

var agentLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent agent activity",
	RunE:  runAgentLogs,
}

var agentSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger an agent sync cycle",
	RunE:  runAgentSync,
}

var agentRotateCmd = &cobra.Command{
	Use:   "rotate-token",
	Short: "Rotate the agent's KSeF token",
	RunE:  runAgentRotate,
}

func init() {
	agentLogsCmd.Flags().IntP("limit", "n", 0, "show only the newest N entries")
	agentCmd.AddCommand(agentStatusCmd, agentLogsCmd, agentSyncCmd, agentRotateCmd)
	rootCmd.AddCommand(agentCmd)
}

func runAgentStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := newAgentClient(cfg).GetStatus(context.Background())
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, s)
	}

	output.AgentStatusTable(os.Stdout, s)
	return nil
}

func runAgentLogs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := newAgentClient(cfg).GetLogs(context.Background())
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, entries)
	}

	output.AgentLogTable(os.Stdout, entries)
	return nil
}

func runAgentSync(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp, err := newAgentClient(cfg).TriggerSync(context.Background())
	if err != nil {
		return err
	}

	return printAgentResponse(resp, "Sync triggered.")
}

func runAgentRotate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp, err := newAgentClient(cfg).RotateToken(context.Background())
	if err != nil {
		return err
	}

	return printAgentResponse(resp, "Token rotation requested.")
}

// printAgentResponse passes the agent's raw JSON through in JSON mode and
// prints a one-line confirmation otherwise.
func printAgentResponse(resp json.RawMessage, fallback string) error {
	if outputFormat() == output.FormatJSON {
		if len(resp) == 0 {
			resp = json.RawMessage(`{}`)
		}
		fmt.Fprintln(os.Stdout, string(resp))
		return nil
	}
	output.Messagef(os.Stdout, "%s", fallback)
	return nil
}
