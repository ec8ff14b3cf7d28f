package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"remuxd/internal/jobfile"
	"remuxd/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var recursiveFlag bool
	var jobsOut string

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "List remuxable files under a directory",
		Long: "Scan walks a directory for files matching the configured extensions\n" +
			"and can write a starter jobs file for `remuxd run`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			recursive := cfg.Scan.Recursive
			if cmd.Flags().Changed("recursive") {
				recursive = recursiveFlag
			}

			found, err := scan.Discover(args[0], cfg.Scan.Extensions, recursive)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No matching files found.")
				return nil
			}

			rows := make([][]string, 0, len(found))
			for i, path := range found {
				size := ""
				if info, err := os.Stat(path); err == nil {
					size = formatSize(info.Size())
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					scan.DisplayTitle(path),
					path,
					size,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "File", "Size"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))

			if jobsOut != "" {
				if err := writeStarterJobs(jobsOut, found); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote starter jobs file with %d jobs to %s\n", len(found), jobsOut)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "Descend into subdirectories (overrides config)")
	cmd.Flags().StringVar(&jobsOut, "jobs", "", "Write a starter jobs file to this path")
	return cmd
}

// writeStarterJobs emits a minimal jobs file: one job per discovered
// file, ready for the user to add track edits and external sources.
func writeStarterJobs(path string, found []string) error {
	file := jobfile.File{Jobs: make([]jobfile.JobDef, 0, len(found))}
	for _, source := range found {
		file.Jobs = append(file.Jobs, jobfile.JobDef{Primary: source})
	}
	encoded, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode jobs file: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write jobs file: %w", err)
	}
	return nil
}
