package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage per-client checklists",
	Long: `Accounting offices track one checklist per client. Each client carries
its own profile and task list; the active client's checklist is the one
list, toggle, and note operate on.`,
}

var clientAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a client and generate its checklist",
	Long: `Generates a checklist for the client's profile and, on success, stores
the client and makes it active. On generation failure no client is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List clients",
	RunE:    runClientList,
}

var clientSwitchCmd = &cobra.Command{
	Use:   "switch ID",
	Short: "Make a client active",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientSwitch,
}

var clientRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove a client",
	Args:    cobra.ExactArgs(1),
	RunE:    runClientRemove,
}

func init() {
	addProfileFlags(clientAddCmd)
	clientAddCmd.Flags().String("nip", "", "client tax identifier (NIP)")
	clientRemoveCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientSwitchCmd, clientRemoveCmd)
	rootCmd.AddCommand(clientCmd)
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	nip, _ := cmd.Flags().GetString("nip")
	p := profileFromFlags(cmd, cfg)

	c, err := st.AddClient(context.Background(), args[0], nip, p)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, c)
	}

	output.Messagef(os.Stdout, "Added client %q with %d tasks (now active)", c.Name, len(c.Tasks))
	output.Messagef(os.Stdout, "  ID: %s", c.ID)
	return nil
}

func runClientList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	snap := st.Snapshot()
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, snap.Clients)
	}

	output.ClientTable(os.Stdout, snap.Clients, snap.ActiveClientID)
	return nil
}

func runClientSwitch(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	ok, err := st.SwitchClient(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return clierr.Newf(clierr.ClientNotFound, "client %q not found", args[0])
	}

	snap := st.Snapshot()
	c, _ := snap.ActiveClient()
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, c)
	}

	output.Messagef(os.Stdout, "Switched to client %q (%d tasks)", c.Name, len(c.Tasks))
	return nil
}

func runClientRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	snap := st.Snapshot()
	c, exists := snap.Clients[args[0]]
	if !exists {
		return clierr.Newf(clierr.ClientNotFound, "client %q not found", args[0])
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if err := confirm(fmt.Sprintf("Remove client %q and its checklist?", c.Name)); err != nil {
			return err
		}
	}

	if _, err := st.RemoveClient(args[0]); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "removed", "id": c.ID, "name": c.Name})
	}

	output.Messagef(os.Stdout, "Removed client %q", c.Name)
	if snap.ActiveClientID == c.ID {
		output.Messagef(os.Stdout, "No client is active now; switch to another or generate a new plan.")
	}
	return nil
}
