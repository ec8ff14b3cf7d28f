package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"remuxd/internal/mux"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <jobs.toml>",
		Short: "Show the exact commands a run would execute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			jobs, err := ctx.loadJobs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prober, err := ctx.newProber()
			if err != nil {
				return err
			}

			synth := mux.NewSynthesizer(prober)
			settings := cfg.Settings()
			now := time.Now()
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				preview := synth.PreviewJob(cmd.Context(), job, settings, cfg.Mux.MkvmergeBinary, cfg.Mux.MkvpropeditBinary, now)
				warnings := previewWarnings(preview)

				fmt.Fprintf(out, "# %s\n", job.Primary.Path)
				fmt.Fprintln(out, preview.CommandLine)
				for _, warning := range warnings {
					fmt.Fprintf(out, "warning: %s\n", warning)
				}
				fmt.Fprintln(out)

				rows = append(rows, []string{
					shortID(preview.JobID),
					yesNo(preview.FastPath),
					preview.Plan.TempPath,
					preview.Plan.FinalPath,
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Fast path", "Temp output", "Final output"},
				rows,
				nil,
			))
			return nil
		},
	}
}

// previewWarnings extends the synthesizer's own warnings with checks only
// the CLI can make, like files that do not exist yet.
func previewWarnings(preview mux.Preview) []string {
	warnings := preview.Warnings
	for _, arg := range preview.Args {
		if len(arg) > 0 && arg[0] == '-' {
			continue
		}
		if arg == preview.Plan.TempPath {
			continue
		}
		if _, err := os.Stat(arg); err == nil || !os.IsNotExist(err) {
			continue
		}
		if looksLikePath(arg) {
			warnings = append(warnings, fmt.Sprintf("file not found: %s", arg))
		}
	}
	return warnings
}

func looksLikePath(arg string) bool {
	for _, r := range arg {
		if r == '/' || r == '\\' {
			return true
		}
	}
	return false
}
