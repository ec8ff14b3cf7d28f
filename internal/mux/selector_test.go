package mux

import (
	"reflect"
	"testing"

	"remuxd/internal/media"
)

func track(id int, kind media.TrackKind, lang string, action media.TrackAction) media.Track {
	t := media.Track{ID: id, Kind: kind, Action: action}
	if lang != "" {
		t.Language = &lang
	}
	return t
}

func TestSelectTracksNoTracksOfKind(t *testing.T) {
	tracks := []media.Track{track(0, media.KindVideo, "", media.ActionKeep)}
	sel := SelectTracks(tracks, media.KindAudio, nil)
	if !sel.Omit {
		t.Fatalf("expected Omit for absent kind, got %+v", sel)
	}
}

func TestSelectTracksNoOpSuppression(t *testing.T) {
	tracks := []media.Track{
		track(1, media.KindAudio, "eng", media.ActionKeep),
		track(2, media.KindAudio, "jpn", media.ActionKeep),
	}
	sel := SelectTracks(tracks, media.KindAudio, nil)
	if !sel.Omit {
		t.Fatalf("full unfiltered set must be a no-op, got %+v", sel)
	}
}

func TestSelectTracksRemoval(t *testing.T) {
	tracks := []media.Track{
		track(1, media.KindAudio, "eng", media.ActionKeep),
		track(2, media.KindAudio, "jpn", media.ActionRemove),
		track(3, media.KindAudio, "ger", media.ActionKeep),
	}
	sel := SelectTracks(tracks, media.KindAudio, nil)
	if sel.Omit || sel.DisableKind {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if !reflect.DeepEqual(sel.IDs, []int{1, 3}) {
		t.Fatalf("IDs = %v, want [1 3]", sel.IDs)
	}
	if !sel.Filtered {
		t.Fatal("removal must mark the selection filtered")
	}
}

func TestSelectTracksLanguageFilter(t *testing.T) {
	tracks := []media.Track{
		track(1, media.KindAudio, "eng", media.ActionKeep),
		track(2, media.KindAudio, "jpn", media.ActionKeep),
		track(3, media.KindAudio, "fre", media.ActionKeep),
	}
	sel := SelectTracks(tracks, media.KindAudio, []string{"English", "French"})
	if !reflect.DeepEqual(sel.IDs, []int{1, 3}) {
		t.Fatalf("IDs = %v, want [1 3]", sel.IDs)
	}
}

func TestSelectTracksFilterKeepsEverything(t *testing.T) {
	// An active filter that keeps the full set still forces an explicit
	// list; only the truly unfiltered case is suppressed.
	tracks := []media.Track{
		track(1, media.KindAudio, "eng", media.ActionKeep),
	}
	sel := SelectTracks(tracks, media.KindAudio, []string{"eng"})
	if sel.Omit {
		t.Fatal("active filter must not be suppressed")
	}
	if !reflect.DeepEqual(sel.IDs, []int{1}) {
		t.Fatalf("IDs = %v, want [1]", sel.IDs)
	}
}

func TestSelectTracksDisableKind(t *testing.T) {
	tracks := []media.Track{
		track(1, media.KindSubtitle, "jpn", media.ActionKeep),
	}
	sel := SelectTracks(tracks, media.KindSubtitle, []string{"English"})
	if !sel.DisableKind {
		t.Fatalf("expected DisableKind when nothing survives, got %+v", sel)
	}
}

func TestSelectTracksRemovalAndFilterIntersect(t *testing.T) {
	tracks := []media.Track{
		track(1, media.KindAudio, "eng", media.ActionRemove),
		track(2, media.KindAudio, "eng", media.ActionKeep),
		track(3, media.KindAudio, "jpn", media.ActionKeep),
	}
	sel := SelectTracks(tracks, media.KindAudio, []string{"eng"})
	if !reflect.DeepEqual(sel.IDs, []int{2}) {
		t.Fatalf("IDs = %v, want [2]", sel.IDs)
	}
}
