package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newIdentitiesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "identities",
		Short: "List available reference identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			identities := catalog.List()
			if len(identities) == 0 {
				cfg, _ := ctx.ensureConfig()
				fmt.Fprintf(cmd.OutOrStdout(), "No identities found under %s.\n", cfg.Paths.IdentitiesDir)
				return nil
			}
			rows := make([][]string, 0, len(identities))
			for _, ident := range identities {
				rows = append(rows, []string{
					ident.ID,
					ident.Name,
					strings.Join(ident.Images, ", "),
					ident.Audio,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Images", "Voice sample"},
				rows,
				nil,
			))
			return nil
		},
	}
}
