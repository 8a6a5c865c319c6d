package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mimic/internal/config"
	"mimic/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var identityFlag string
	var imageFlag string

	cmd := &cobra.Command{
		Use:   "submit <video>",
		Short: "Copy a video into the uploads area and enqueue a transfer job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identityID := strings.TrimSpace(identityFlag)
			if identityID == "" {
				return fmt.Errorf("--identity is required")
			}

			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			ident, err := catalog.Get(identityID)
			if err != nil {
				return fmt.Errorf("unknown identity %q; run `mimic identities`", identityID)
			}
			image := strings.TrimSpace(imageFlag)
			if image == "" {
				if len(ident.Images) == 0 {
					return fmt.Errorf("identity %q has no images", identityID)
				}
				image = ident.Images[0]
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				filename, err := stageUpload(cfg, args[0])
				if err != nil {
					return err
				}
				job, err := store.Enqueue(cmd.Context(), queue.NewJobRequest{
					IdentityID:    identityID,
					IdentityImage: image,
					SourceVideo:   filename,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s (%s as %s)\n", job.ID, filepath.Base(args[0]), ident.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&identityFlag, "identity", "i", "", "Identity to transfer onto the video")
	cmd.Flags().StringVar(&imageFlag, "image", "", "Reference image name (defaults to the identity's first image)")
	return cmd
}

// stageUpload copies the source video into the uploads directory under a
// server-style UUID filename, mirroring what the HTTP upload endpoint does.
func stageUpload(cfg *config.Config, sourcePath string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("stat source video: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source path %q is a directory", sourcePath)
	}

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if ext == "" {
		ext = ".mp4"
	}
	filename := uuid.NewString() + ext
	destPath := filepath.Join(cfg.UploadsDir(), filename)

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("open source video: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		_ = dest.Close()
		_ = os.Remove(destPath)
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := dest.Close(); err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return filename, nil
}
