package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"remuxd/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past job outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			history, err := store.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open job history: %w", err)
			}
			defer history.Close()

			entries, err := history.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No job history recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				detail := entry.OutputPath
				if detail == "" {
					detail = entry.Message
				}
				size := ""
				if entry.SizeBytes > 0 {
					size = formatSize(entry.SizeBytes)
				}
				rows = append(rows, []string{
					formatTimestamp(entry.FinishedAt),
					shortID(entry.JobID),
					filepath.Base(entry.SourcePath),
					statusCell(entry.Status),
					size,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Finished", "Job", "Source", "Status", "Size", "Output / Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 lists everything)")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded job history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			history, err := store.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open job history: %w", err)
			}
			defer history.Close()

			removed, err := history.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
			return nil
		},
	}
}
