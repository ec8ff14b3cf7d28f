package mux

import (
	"remuxd/internal/language"
	"remuxd/internal/media"
)

// Selection is the computed subset of a container's tracks of one kind.
type Selection struct {
	// IDs are the surviving track ids, in track-list order.
	IDs []int
	// Omit indicates the selection is a no-op and no flag may be
	// emitted (the full unfiltered set survives, or the container has
	// no tracks of the kind at all).
	Omit bool
	// DisableKind indicates the kind must be disabled outright
	// (every track of the kind was removed or filtered away).
	DisableKind bool
	// Filtered reports whether any removal or language filter applied.
	Filtered bool
}

// SelectTracks computes which primary tracks of the given kind survive.
//
// Removal markings only take effect once at least one track of the kind
// is marked Remove; otherwise the baseline is every track of the kind.
// A keep-language allow-list (nil disables filtering) intersects the
// baseline case-insensitively.
func SelectTracks(tracks []media.Track, kind media.TrackKind, keepLanguages []string) Selection {
	var (
		typeIDs    []int
		actionIDs  []int
		hasRemoved bool
	)
	for _, track := range tracks {
		if track.Kind != kind {
			continue
		}
		typeIDs = append(typeIDs, track.ID)
		if track.Removed() {
			hasRemoved = true
			continue
		}
		actionIDs = append(actionIDs, track.ID)
	}

	if len(typeIDs) == 0 {
		return Selection{Omit: true}
	}

	selected := typeIDs
	if hasRemoved {
		selected = actionIDs
	}

	filtered := hasRemoved
	if keepLanguages != nil {
		keep := trackIDsByLanguage(tracks, kind, keepLanguages)
		selected = intersectIDs(selected, keep)
		filtered = true
	}

	if !filtered && len(selected) == len(typeIDs) {
		return Selection{Omit: true}
	}
	if len(selected) == 0 {
		return Selection{DisableKind: true, Filtered: filtered}
	}
	return Selection{IDs: selected, Filtered: filtered}
}

// trackIDsByLanguage returns ids of tracks of the kind whose language
// matches any allow-listed value.
func trackIDsByLanguage(tracks []media.Track, kind media.TrackKind, languages []string) []int {
	var ids []int
	for _, track := range tracks {
		if track.Kind != kind {
			continue
		}
		if track.Language == nil {
			continue
		}
		if language.MatchesAny(*track.Language, languages) {
			ids = append(ids, track.ID)
		}
	}
	return ids
}

func intersectIDs(left, right []int) []int {
	rightSet := make(map[int]struct{}, len(right))
	for _, id := range right {
		rightSet[id] = struct{}{}
	}
	var out []int
	for _, id := range left {
		if _, ok := rightSet[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
