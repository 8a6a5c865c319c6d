package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mimic/internal/config"
	"mimic/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show full details for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				id := strings.TrimSpace(args[0])
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if job == nil {
					// Allow the short prefix the list view prints.
					job, err = findByPrefix(cmd, store, id)
					if err != nil {
						return err
					}
				}
				if job == nil {
					return fmt.Errorf("job %q not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %s\n", job.ID)
				fmt.Fprintf(out, "Identity:  %s (image %s)\n", job.IdentityID, job.IdentityImage)
				fmt.Fprintf(out, "Video:     %s\n", job.SourceVideo)
				fmt.Fprintf(out, "Status:    %s\n", job.Status)
				fmt.Fprintf(out, "Progress:  %d%%\n", job.Progress)
				if job.OutputPath != "" {
					fmt.Fprintf(out, "Output:    %s\n", job.OutputPath)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
				}
				fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Updated:   %s\n", job.UpdatedAt.Local().Format(time.RFC1123))
				return nil
			})
		},
	}
}

func findByPrefix(cmd *cobra.Command, store *queue.Store, prefix string) (*queue.Job, error) {
	if len(prefix) < 4 {
		return nil, nil
	}
	jobs, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	var match *queue.Job
	for _, job := range jobs {
		if strings.HasPrefix(job.ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("job id prefix %q is ambiguous", prefix)
			}
			match = job
		}
	}
	return match, nil
}
