package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mimic/internal/config"
	"mimic/internal/preflight"
	"mimic/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue health and environment checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()

				summary, err := store.HealthSummary(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Pending", "Processing", "Completed", "Failed", "Total"},
					[][]string{{
						fmt.Sprintf("%d", summary.Pending),
						fmt.Sprintf("%d", summary.Processing),
						fmt.Sprintf("%d", summary.Completed),
						fmt.Sprintf("%d", summary.Failed),
						fmt.Sprintf("%d", summary.Total),
					}},
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
				))

				rows := make([][]string, 0, 12)
				for _, res := range preflight.RunAll(cfg) {
					rows = append(rows, []string{res.Name, passFail(res.Passed), res.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Check", "Status", "Detail"},
					rows,
					nil,
				))

				if processing, err := store.List(cmd.Context(), queue.StatusProcessing); err == nil && len(processing) > 0 {
					job := processing[0]
					fmt.Fprintf(out, "Active job: %s (%s, %d%%)\n", shortID(job.ID), job.IdentityID, job.Progress)
				}
				return nil
			})
		},
	}
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAILED"
}
