package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"remuxd/internal/fileutil"
	"remuxd/internal/media"
	"remuxd/internal/mux"
)

var crcToken = regexp.MustCompile(`\s*\[[0-9A-Fa-f]{8}\]$`)

// StampCRC appends the 8-digit uppercase hex checksum token to a file stem.
func StampCRC(stem string, crc uint32) string {
	return fmt.Sprintf("%s [%08X]", stem, crc)
}

// StripCRCToken removes a trailing bracketed checksum token from a stem,
// if present.
func StripCRCToken(stem string) string {
	return crcToken.ReplaceAllString(stem, "")
}

// finalize moves a finished output into its resting place. In overwrite
// mode the source is deleted only after the temp output exists, so a
// crash between the two steps never loses both copies. Returns the final
// path and size.
func finalize(job media.Job, plan mux.Plan, settings media.Settings) (string, int64, error) {
	info, err := os.Stat(plan.TempPath)
	if err != nil {
		return "", 0, fmt.Errorf("finalize: output missing: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(plan.FinalPath), filepath.Ext(plan.FinalPath))
	if settings.RemoveOldCRC {
		stem = StripCRCToken(stem)
	}
	if settings.AddCRC {
		crc, err := fileutil.CRC32File(plan.TempPath)
		if err != nil {
			return "", 0, err
		}
		stem = StampCRC(stem, crc)
	}
	target := filepath.Join(filepath.Dir(plan.FinalPath), stem+".mkv")

	if plan.Overwrite {
		if err := os.Remove(job.Primary.Path); err != nil && !os.IsNotExist(err) {
			return "", 0, fmt.Errorf("finalize: remove source: %w", err)
		}
	}
	if target != plan.TempPath {
		if err := os.Rename(plan.TempPath, target); err != nil {
			return "", 0, fmt.Errorf("finalize: rename output: %w", err)
		}
	}
	return target, info.Size(), nil
}
