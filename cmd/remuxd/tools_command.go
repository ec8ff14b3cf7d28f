package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remuxd/internal/deps"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(
				cfg.Mux.MkvmergeBinary,
				cfg.Mux.MkvpropeditBinary,
				cfg.Mux.MediainfoBinary,
			))

			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				state := "found"
				detail := status.Version
				if !status.Available {
					state = "missing"
					detail = status.Detail
					if !status.Optional {
						missingRequired = true
					}
				}
				required := "required"
				if status.Optional {
					required = "optional"
				}
				rows = append(rows, []string{
					status.Name,
					state,
					required,
					status.Command,
					detail,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Status", "Role", "Command", "Detail"},
				rows,
				nil,
			))
			if missingRequired {
				return fmt.Errorf("required tools are missing")
			}
			return nil
		},
	}
}
