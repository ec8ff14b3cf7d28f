package mux

import (
	"context"
	"time"

	"remuxd/internal/media"
)

// Preview is the dry-run rendering of a job: the exact command that a
// run would execute, plus the output plan it would follow.
type Preview struct {
	JobID       string
	Binary      string
	Args        []string
	CommandLine string
	FastPath    bool
	Plan        Plan
	Warnings    []string
}

// PreviewJob renders the command a job would run without touching any
// file. The fast path is previewed only when the job qualifies and at
// least one in-place edit exists; otherwise the full mkvmerge invocation
// is shown, exactly as the scheduler would spawn it.
func (s *Synthesizer) PreviewJob(ctx context.Context, job media.Job, settings media.Settings, mergeBinary, propeditBinary string, now time.Time) Preview {
	preview := Preview{JobID: job.ID, Plan: ResolveOutput(job, settings, now)}

	if FastPathEligible(job, settings) && settings.UseFastPath {
		if args, ok := BuildPropeditArgs(job.Primary); ok {
			preview.Binary = propeditBinary
			preview.Args = args
			preview.FastPath = true
			preview.CommandLine = CommandLine(propeditBinary, args)
			return preview
		}
		preview.Warnings = append(preview.Warnings, "fast path eligible but no track edits pending; falling back to full remux")
	}

	args, _ := s.Synthesize(ctx, job, settings, preview.Plan.TempPath)
	preview.Binary = mergeBinary
	preview.Args = args
	preview.CommandLine = CommandLine(mergeBinary, args)
	return preview
}
