package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/teamdesk/internal/persona"
)

func newPersonasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List and inspect chat personas",
	}
	cmd.AddCommand(newPersonasListCmd())
	cmd.AddCommand(newPersonasShowCmd())
	return cmd
}

func newPersonasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persona names in display order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for i, name := range persona.Default().Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, name)
			}
		},
	}
}

func newPersonasShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a persona's system instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := persona.Default().Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", p.Name, p.Instruction)
			return nil
		},
	}
}
