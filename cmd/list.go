package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/clierr"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/store"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List checklist tasks",
	Long:    `Lists the current checklist with optional filtering and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().String("section", "", "filter by section ("+strings.Join(task.Sections(), ", ")+")")
	listCmd.Flags().String("priority", "", "filter by priority ("+strings.Join(task.Priorities(), ", ")+")")
	listCmd.Flags().Bool("done", false, "show only completed tasks")
	listCmd.Flags().Bool("pending", false, "show only pending tasks")
	listCmd.Flags().Bool("bot", false, "show only agent-automatable tasks")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title, description, or notes (case-insensitive)")
	listCmd.Flags().String("industry", "", "bulk mode: list one industry's checklist")
	rootCmd.AddCommand(listCmd)
}

// resolveTasks returns the task list mutations and queries operate on:
// one bulk entry when industry is given, the single checklist otherwise.
func resolveTasks(snap store.Snapshot, industry string) ([]task.Task, error) {
	if industry == "" {
		return snap.Tasks, nil
	}
	tasks, ok := snap.BulkTasks[industry]
	if !ok {
		keys := make([]string, 0, len(snap.BulkTasks))
		for k := range snap.BulkTasks {
			keys = append(keys, k)
		}
		return nil, clierr.Newf(clierr.IndustryNotFound, "no bulk checklist for industry %q", industry).
			WithDetails(map[string]any{"available": keys})
	}
	return tasks, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := openStore(cfg)
	defer st.Close()

	industry, _ := cmd.Flags().GetString("industry")
	tasks, err := resolveTasks(st.Snapshot(), industry)
	if err != nil {
		return err
	}

	section, _ := cmd.Flags().GetString("section")
	priority, _ := cmd.Flags().GetString("priority")
	done, _ := cmd.Flags().GetBool("done")
	pending, _ := cmd.Flags().GetBool("pending")
	bot, _ := cmd.Flags().GetBool("bot")
	search, _ := cmd.Flags().GetString("search")

	if section != "" {
		if err := task.ValidateSection(section); err != nil {
			return err
		}
	}
	if priority != "" {
		if err := task.ValidatePriority(priority); err != nil {
			return err
		}
	}

	opts := task.FilterOptions{Section: section, Priority: priority, Search: search}
	if done {
		v := true
		opts.Completed = &v
	} else if pending {
		v := false
		opts.Completed = &v
	}

	tasks = task.Filter(tasks, opts)
	if bot {
		var automatable []task.Task
		for _, t := range tasks {
			if t.Automatable {
				automatable = append(automatable, t)
			}
		}
		tasks = automatable
	}

	return outputTaskList(tasks)
}

func outputTaskList(tasks []task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}
