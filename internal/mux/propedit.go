package mux

import (
	"fmt"
	"strings"

	"remuxd/internal/media"
)

// BuildPropeditArgs produces the mkvpropedit argument list for an
// in-place edit of the primary file. It returns ok=false when no track
// carries a pending edit, in which case the caller must fall back to a
// full remux.
//
// mkvpropedit addresses tracks with 1-based positions, unlike the
// 0-based ids mkvmerge reports.
func BuildPropeditArgs(primary media.PrimaryFile) ([]string, bool) {
	args := []string{primary.Path}
	edits := 0

	for _, track := range primary.Tracks {
		if track.Removed() {
			continue
		}
		var sets []string
		if track.Name != nil {
			// An empty name is a deliberate clear.
			sets = append(sets, fmt.Sprintf("name=%s", strings.TrimSpace(*track.Name)))
		}
		if track.Language != nil {
			sets = append(sets, fmt.Sprintf("language=%s", *track.Language))
		}
		if track.Default != nil {
			sets = append(sets, fmt.Sprintf("flag-default=%s", zeroOne(*track.Default)))
		}
		if track.Forced != nil {
			if track.Kind == media.KindSubtitle {
				sets = append(sets, fmt.Sprintf("flag-forced-display=%s", zeroOne(*track.Forced)))
			} else {
				sets = append(sets, fmt.Sprintf("flag-forced=%s", zeroOne(*track.Forced)))
			}
		}
		if len(sets) == 0 {
			continue
		}
		args = append(args, "--edit", fmt.Sprintf("track:%d", track.ID+1))
		for _, set := range sets {
			args = append(args, "--set", set)
		}
		edits++
	}

	if edits == 0 {
		return nil, false
	}
	return args, true
}

func zeroOne(value bool) string {
	if value {
		return "1"
	}
	return "0"
}
