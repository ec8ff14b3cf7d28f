package media

import (
	"strings"

	"github.com/google/uuid"
)

// TrackKind identifies the class of a container track or external file.
type TrackKind string

const (
	KindVideo      TrackKind = "video"
	KindAudio      TrackKind = "audio"
	KindSubtitle   TrackKind = "subtitle"
	KindChapter    TrackKind = "chapter"
	KindAttachment TrackKind = "attachment"
)

var allKinds = []TrackKind{KindVideo, KindAudio, KindSubtitle, KindChapter, KindAttachment}

// ParseKind converts a string into a known TrackKind.
func ParseKind(value string) (TrackKind, bool) {
	normalized := TrackKind(strings.ToLower(strings.TrimSpace(value)))
	for _, kind := range allKinds {
		if kind == normalized {
			return kind, true
		}
	}
	return "", false
}

// TrackAction marks what should happen to a primary track during synthesis.
type TrackAction string

const (
	ActionKeep   TrackAction = "keep"
	ActionRemove TrackAction = "remove"
)

// Track describes one track inside a container. Optional properties use
// pointers so "unset" is distinguishable from an explicit empty or false
// value: a set-but-empty Name clears the track name on the fast path.
type Track struct {
	ID       int
	Kind     TrackKind
	Language *string
	Name     *string
	Default  *bool
	Forced   *bool
	Action   TrackAction
}

// Removed reports whether the track is marked for removal.
func (t Track) Removed() bool {
	return t.Action == ActionRemove
}

// FileScope distinguishes external files applied to every job in a batch
// from files bound to one specific primary file.
type FileScope string

const (
	ScopeBulk       FileScope = "bulk"
	ScopePerPrimary FileScope = "per-primary"
)

// TrackOverride carries per-track property overrides for one entry of a
// multi-track external file. Overrides win over file-level values.
type TrackOverride struct {
	Language *string
	Name     *string
	Delay    *float64
}

// ExternalFile is an audio, subtitle, chapter, or attachment source merged
// into the primary file's output.
type ExternalFile struct {
	Path  string
	Kind  TrackKind
	Scope FileScope

	// SelectedTrackIDs limits which tracks of the file are merged.
	// nil means unset (resolution probes the file); an empty, non-nil
	// slice skips the file entirely.
	SelectedTrackIDs []int

	// TrackID is the single declared track id, when known from probing.
	TrackID *int

	Language *string
	Name     *string
	Delay    *float64
	Default  *bool
	Forced   *bool

	// IncludeSubtitles asks for text tracks embedded in an audio file to
	// be merged alongside its audio. IncludedSubtitleTrackIDs limits which
	// ones: nil means every probed text track, an empty non-nil slice
	// means none. Only meaningful on audio files.
	IncludeSubtitles         bool
	IncludedSubtitleTrackIDs []int

	Overrides map[int]TrackOverride
}

// Override returns the per-track override for the given id, if any.
func (f ExternalFile) Override(trackID int) (TrackOverride, bool) {
	override, ok := f.Overrides[trackID]
	return override, ok
}

// PrimaryFile is the main media container a job remuxes around.
type PrimaryFile struct {
	Path   string
	Size   int64
	Tracks []Track
}

// TracksOfKind returns the primary tracks matching kind, in list order.
func (p PrimaryFile) TracksOfKind(kind TrackKind) []Track {
	var out []Track
	for _, track := range p.Tracks {
		if track.Kind == kind {
			out = append(out, track)
		}
	}
	return out
}

// Job combines one primary file with its external sources. Jobs are
// immutable once enqueued and consumed exactly once by a worker.
type Job struct {
	ID          string
	Primary     PrimaryFile
	Audios      []ExternalFile
	Subtitles   []ExternalFile
	Chapters    []ExternalFile
	Attachments []ExternalFile
}

// HasExternalFiles reports whether any external source is attached.
func (j Job) HasExternalFiles() bool {
	return len(j.Audios) > 0 || len(j.Subtitles) > 0 || len(j.Chapters) > 0 || len(j.Attachments) > 0
}

// NewJobID returns a fresh unique job identifier.
func NewJobID() string {
	return uuid.NewString()
}
