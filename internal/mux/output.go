package mux

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"remuxd/internal/media"
)

// Plan describes where mkvmerge writes and what the finished file is
// ultimately called.
type Plan struct {
	// TempPath is the path mkvmerge writes to. In overwrite mode it
	// carries a timestamp marker so the source stays readable until the
	// remux succeeds.
	TempPath string
	// FinalPath is the resting place of the finished file, before any
	// CRC stamping.
	FinalPath string
	// Overwrite reports whether the source is replaced in place.
	Overwrite bool
}

// ResolveOutput computes the write plan for a job. Outputs land in the
// destination directory when one is configured, otherwise next to the
// source. In overwrite mode the output carries a temporary name and the
// source is replaced only after a successful run.
func ResolveOutput(job media.Job, settings media.Settings, now time.Time) Plan {
	stem := fileStem(job.Primary.Path)
	dir := strings.TrimSpace(settings.DestinationDir)
	if dir == "" {
		dir = filepath.Dir(job.Primary.Path)
	}
	if settings.OverwriteMode() {
		return Plan{
			TempPath:  filepath.Join(dir, stem+"#"+timestampToken(now)+".mkv"),
			FinalPath: filepath.Join(dir, stem+".mkv"),
			Overwrite: true,
		}
	}
	final := filepath.Join(dir, stem+".mkv")
	return Plan{TempPath: final, FinalPath: final}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func timestampToken(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10)
}
