package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent pipeline jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := ctx.apiAddress()
			if err != nil {
				return err
			}
			listed, err := newAPIClient(address).listJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(listed) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(listed))
			for _, job := range listed {
				duration := ""
				if job.FinishedAt != nil {
					duration = job.FinishedAt.Sub(job.StartedAt).Round(time.Millisecond).String()
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", job.ID),
					job.Kind,
					job.Filename,
					job.Status,
					duration,
					job.Detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Kind", "File", "Status", "Duration", "Detail"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show")
	return cmd
}
