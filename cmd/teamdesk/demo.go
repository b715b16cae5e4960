package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/zulandar/teamdesk/internal/db"
	"github.com/zulandar/teamdesk/internal/tabular"
	"github.com/zulandar/teamdesk/internal/task"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Work with the demo task set",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write the demo task table as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemoExport(cmd)
		},
	})
	return cmd
}

func runDemoExport(cmd *cobra.Command) error {
	gdb, err := db.OpenSession("demo-" + uuid.NewString())
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	store, err := task.NewStore(gdb, task.Opts{})
	if err != nil {
		return err
	}
	if err := store.ResetToDemo(); err != nil {
		return err
	}
	tasks, err := store.All()
	if err != nil {
		return err
	}
	return tabular.WriteTaskCSV(cmd.OutOrStdout(), tasks)
}
