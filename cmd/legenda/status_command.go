package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and dependency availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := ctx.apiAddress()
			if err != nil {
				return err
			}
			status, err := newAPIClient(address).status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:  running (pid %d)\n", status.PID)
			if status.JournalPath != "" {
				fmt.Fprintf(out, "Journal: %s\n", status.JournalPath)
			}
			if len(status.Jobs) > 0 {
				fmt.Fprintf(out, "Jobs:    running=%d completed=%d failed=%d\n",
					status.Jobs["running"], status.Jobs["completed"], status.Jobs["failed"])
			}

			rows := make([][]string, 0, len(status.Dependencies))
			for _, dep := range status.Dependencies {
				availability := "ok"
				if !dep.Available {
					availability = "missing"
					if dep.Optional {
						availability = "missing (optional)"
					}
				}
				detail := dep.Detail
				if detail == "" {
					detail = dep.Command
				}
				rows = append(rows, []string{dep.Name, availability, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "State", "Detail"}, rows, nil))
			return nil
		},
	}
}
