package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// listCommand wires "<name>" and "<name> delete <n>" over one of the
// persisted lists. Numbers are 1-based as printed.
type listCommand struct {
	use, short, title, empty string
	items                    func() []string
	remove                   func(i int) error
}

func (lc listCommand) build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   lc.use,
		Short: lc.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderList(cmd.OutOrStdout(), lc.title, lc.empty, lc.items())
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <n>",
		Short: "Delete entry n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid number %q", args[0])
			}
			if err := lc.remove(n - 1); err != nil {
				return fmt.Errorf("deleting %d: %w", n, err)
			}
			renderList(cmd.OutOrStdout(), lc.title, lc.empty, lc.items())
			return nil
		},
	})
	return cmd
}

func newRemindersCmd(a *app) *cobra.Command {
	return listCommand{
		use:    "reminders",
		short:  "List reminders",
		title:  "Reminders",
		empty:  "No reminders.",
		items:  func() []string { return a.store.Reminders() },
		remove: func(i int) error { return a.store.DeleteReminder(i) },
	}.build()
}

func newTasksCmd(a *app) *cobra.Command {
	return listCommand{
		use:    "tasks",
		short:  "List tasks",
		title:  "Tasks",
		empty:  "You have no tasks.",
		items:  func() []string { return a.store.Tasks() },
		remove: func(i int) error { return a.store.DeleteTask(i) },
	}.build()
}
