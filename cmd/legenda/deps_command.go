package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"legenda/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external binary availability locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				availability := "ok"
				if !status.Available {
					availability = "missing"
					if status.Optional {
						availability = "missing (optional)"
					}
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, availability, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Dependency", "State", "Detail"}, rows, nil))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
