package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mimic/internal/config"
	"mimic/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFlag); trimmed != "" {
				status, ok := queue.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q", trimmed)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
					return nil
				}
				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						shortID(job.ID),
						job.IdentityID,
						string(job.Status),
						fmt.Sprintf("%d%%", job.Progress),
						summarizeOutcome(job),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Identity", "Status", "Progress", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (pending, processing, completed, failed)")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedFlag bool
	var failedFlag bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove jobs from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var (
					removed int64
					err     error
				)
				switch {
				case completedFlag && failedFlag:
					return fmt.Errorf("--completed and --failed are mutually exclusive")
				case completedFlag:
					removed, err = store.ClearCompleted(cmd.Context())
				case failedFlag:
					removed, err = store.ClearFailed(cmd.Context())
				default:
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s).\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedFlag, "completed", false, "Only remove completed jobs")
	cmd.Flags().BoolVar(&failedFlag, "failed", false, "Only remove failed jobs")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func summarizeOutcome(job *queue.Job) string {
	switch job.Status {
	case queue.StatusCompleted:
		return job.OutputPath
	case queue.StatusFailed:
		return truncate(job.ErrorMessage, 60)
	default:
		return ""
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
