package mux

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"remuxd/internal/language"
	"remuxd/internal/media"
	"remuxd/internal/media/probe"
)

// Synthesizer builds mkvmerge argument lists from jobs. A prober may be
// supplied to expand external files that carry more than one track of
// the relevant kind; a nil prober disables expansion.
type Synthesizer struct {
	prober probe.Prober
}

// NewSynthesizer constructs a command synthesizer.
func NewSynthesizer(prober probe.Prober) *Synthesizer {
	return &Synthesizer{prober: prober}
}

// resolvedEntry is one logical track contribution of an external file.
// A multi-track file expands to several entries sharing the same path;
// only the first applies the file-level language or inherits the
// file-level default.
type resolvedEntry struct {
	file          media.ExternalFile
	trackID       int
	applyLanguage bool
	isDefault     *bool
}

// FastPathEligible reports whether the job qualifies for in-place
// property editing: explicit overwrite-source mode, no external files of
// any kind, and no active keep-language filter.
func FastPathEligible(job media.Job, settings media.Settings) bool {
	inPlace := strings.TrimSpace(settings.DestinationDir) == "" && settings.OverwriteSource
	return inPlace &&
		!job.HasExternalFiles() &&
		!settings.AudioFilterActive() &&
		!settings.SubtitleFilterActive()
}

// Synthesize produces the full mkvmerge argument list for the job and
// reports fast-path eligibility. Identical inputs always yield
// byte-identical argument lists; the step order below is a correctness
// requirement of the external tool, not a style choice.
func (s *Synthesizer) Synthesize(ctx context.Context, job media.Job, settings media.Settings, outputPath string) ([]string, bool) {
	args := []string{"--gui-mode", "--output", outputPath}

	externalAudios := s.resolveEntries(ctx, job.Audios, media.KindAudio)
	externalSubtitles := s.resolveEntries(ctx, job.Subtitles, media.KindSubtitle)
	externalSubtitles = append(externalSubtitles, s.subtitlesFromAudio(ctx, job.Audios)...)

	// Container-level strip flags.
	if settings.DiscardOldChapters {
		args = append(args, "--no-chapters")
	}
	if settings.DiscardOldAttachments {
		args = append(args, "--no-attachments")
	}
	if settings.RemoveGlobalTags {
		args = append(args, "--no-global-tags")
	}

	// External defaults take precedence: clear the default flag on every
	// kept primary track of the same kind before promotions apply.
	if anyEntryDefault(externalAudios) {
		args = clearPrimaryDefaults(args, job.Primary.Tracks, media.KindAudio)
	}
	if anyEntryDefault(externalSubtitles) {
		args = clearPrimaryDefaults(args, job.Primary.Tracks, media.KindSubtitle)
	}

	// Settings-driven default-language promotion, against the unfiltered
	// primary track list.
	args = promoteDefaultLanguage(args, job.Primary.Tracks, media.KindAudio, settings.MakeAudioDefaultLanguage)
	args = promoteDefaultLanguage(args, job.Primary.Tracks, media.KindSubtitle, settings.MakeSubtitleDefaultLanguage)

	// Track selection: video never filters by language.
	var audioKeep, subtitleKeep []string
	if settings.AudioFilterActive() {
		audioKeep = settings.KeepAudioLanguages
	}
	if settings.SubtitleFilterActive() {
		subtitleKeep = settings.KeepSubtitleLanguages
	}
	args = appendSelection(args, job.Primary.Tracks, media.KindVideo, nil)
	args = appendSelection(args, job.Primary.Tracks, media.KindAudio, audioKeep)
	args = appendSelection(args, job.Primary.Tracks, media.KindSubtitle, subtitleKeep)

	// Per-track property edits must precede the primary path argument:
	// mkvmerge binds track flags to the next file on the command line.
	args = appendPrimaryTrackEdits(args, job.Primary.Tracks)

	if len(externalAudios) > 0 || len(externalSubtitles) > 0 {
		args = appendTrackOrder(args, job, externalAudios, externalSubtitles)
	}

	args = append(args, job.Primary.Path)

	for _, entry := range externalAudios {
		args = appendExternalEntry(args, entry, media.KindAudio)
	}
	for _, entry := range externalSubtitles {
		args = appendExternalEntry(args, entry, media.KindSubtitle)
	}

	for _, chapter := range job.Chapters {
		args = append(args, "--chapters", chapter.Path)
		if chapter.Delay != nil && *chapter.Delay != 0 {
			// The 0: selector references the most recently added file.
			args = append(args, "--sync", fmt.Sprintf("0:%d", delayMillis(*chapter.Delay)))
		}
	}

	for _, attachment := range job.Attachments {
		args = append(args, "--attach-file", attachment.Path)
	}

	return args, FastPathEligible(job, settings)
}

// resolveEntries applies the multi-track-file rule: an explicit selection
// wins (empty selection skips the file); otherwise probing expands files
// reporting more than one track of the kind to one entry per probed id;
// the final fallback is the declared or first probed id, then id 0.
func (s *Synthesizer) resolveEntries(ctx context.Context, files []media.ExternalFile, kind media.TrackKind) []resolvedEntry {
	var entries []resolvedEntry
	for _, file := range files {
		var ids []int
		switch {
		case file.SelectedTrackIDs != nil:
			if len(file.SelectedTrackIDs) == 0 {
				continue
			}
			ids = append(ids, file.SelectedTrackIDs...)
		default:
			probed := s.probeTrackIDs(ctx, file.Path, kind)
			if len(probed) > 1 {
				ids = probed
			} else if file.TrackID != nil {
				ids = []int{*file.TrackID}
			} else {
				ids = probed
			}
		}
		if len(ids) == 0 {
			ids = []int{0}
		}

		inheritDefault := file.Default != nil && *file.Default
		for index, trackID := range ids {
			entry := resolvedEntry{
				file:          file,
				trackID:       trackID,
				applyLanguage: index == 0,
				isDefault:     file.Default,
			}
			if inheritDefault {
				first := index == 0
				entry.isDefault = &first
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// subtitlesFromAudio pulls text tracks out of external audio files that
// opted in. An explicit id list wins (empty list contributes nothing);
// otherwise the file's probed subtitle tracks are used, and a file
// without any is simply skipped. The entries never carry the audio
// file's language, default, or forced flags; name, delay, scope, and
// per-track overrides are inherited.
func (s *Synthesizer) subtitlesFromAudio(ctx context.Context, audios []media.ExternalFile) []resolvedEntry {
	var entries []resolvedEntry
	for _, file := range audios {
		if !file.IncludeSubtitles {
			continue
		}
		ids := file.IncludedSubtitleTrackIDs
		if ids == nil {
			ids = s.probeTrackIDs(ctx, file.Path, media.KindSubtitle)
		}
		if len(ids) == 0 {
			continue
		}
		carried := file
		carried.Default = nil
		carried.Forced = nil
		for _, trackID := range ids {
			entries = append(entries, resolvedEntry{file: carried, trackID: trackID})
		}
	}
	return entries
}

func (s *Synthesizer) probeTrackIDs(ctx context.Context, path string, kind media.TrackKind) []int {
	if s.prober == nil {
		return nil
	}
	info, err := s.prober.Probe(ctx, path)
	if err != nil {
		// Probe failures fall back to declared ids; they are not a
		// job fault at synthesis time.
		return nil
	}
	return info.TrackIDsByKind(kind)
}

func anyEntryDefault(entries []resolvedEntry) bool {
	for _, entry := range entries {
		if entry.isDefault != nil && *entry.isDefault {
			return true
		}
	}
	return false
}

func clearPrimaryDefaults(args []string, tracks []media.Track, kind media.TrackKind) []string {
	for _, track := range tracks {
		if track.Kind != kind || track.Removed() {
			continue
		}
		args = append(args, "--default-track-flag", fmt.Sprintf("%d:no", track.ID))
	}
	return args
}

func promoteDefaultLanguage(args []string, tracks []media.Track, kind media.TrackKind, lang string) []string {
	if strings.TrimSpace(lang) == "" {
		return args
	}
	for _, track := range tracks {
		if track.Kind != kind || track.Language == nil {
			continue
		}
		if language.Matches(*track.Language, lang) {
			args = append(args, "--default-track-flag", fmt.Sprintf("%d:yes", track.ID))
		}
	}
	return args
}

func appendSelection(args []string, tracks []media.Track, kind media.TrackKind, keepLanguages []string) []string {
	selection := SelectTracks(tracks, kind, keepLanguages)
	if selection.Omit {
		return args
	}
	if selection.DisableKind {
		switch kind {
		case media.KindVideo:
			return append(args, "--no-video")
		case media.KindAudio:
			return append(args, "--no-audio")
		case media.KindSubtitle:
			return append(args, "--no-subtitles")
		default:
			return args
		}
	}
	var flag string
	switch kind {
	case media.KindVideo:
		flag = "--video-tracks"
	case media.KindAudio:
		flag = "--audio-tracks"
	case media.KindSubtitle:
		flag = "--subtitle-tracks"
	default:
		return args
	}
	return append(args, flag, joinIDs(selection.IDs))
}

func appendPrimaryTrackEdits(args []string, tracks []media.Track) []string {
	for _, track := range tracks {
		if track.Removed() {
			continue
		}
		if track.Name != nil && strings.TrimSpace(*track.Name) != "" {
			args = append(args, "--track-name", fmt.Sprintf("%d:%s", track.ID, *track.Name))
		}
		if track.Language != nil {
			args = append(args, "--language", fmt.Sprintf("%d:%s", track.ID, *track.Language))
		}
		if track.Default != nil {
			args = append(args, "--default-track-flag", fmt.Sprintf("%d:%s", track.ID, yesNo(*track.Default)))
		}
		if track.Forced != nil {
			if track.Kind == media.KindSubtitle {
				args = append(args, "--forced-display-flag", fmt.Sprintf("%d:%s", track.ID, yesNo(*track.Forced)))
			} else {
				args = append(args, "--forced-track", fmt.Sprintf("%d:%s", track.ID, yesNo(*track.Forced)))
			}
		}
	}
	return args
}

// appendTrackOrder emits the explicit output ordering: primary video,
// bulk external audio, per-primary external audio, remaining primary
// audio, remaining primary subtitles, bulk external subtitles,
// per-primary external subtitles. External files are numbered in the
// order they follow the primary file on the command line.
func appendTrackOrder(args []string, job media.Job, audios, subtitles []resolvedEntry) []string {
	var order []string
	for _, track := range job.Primary.Tracks {
		if track.Kind == media.KindVideo && !track.Removed() {
			order = append(order, fmt.Sprintf("0:%d", track.ID))
		}
	}

	fileIndex := 1
	var bulkAudio, perPrimaryAudio []string
	for _, entry := range audios {
		ref := fmt.Sprintf("%d:%d", fileIndex, entry.trackID)
		if entry.file.Scope == media.ScopePerPrimary {
			perPrimaryAudio = append(perPrimaryAudio, ref)
		} else {
			bulkAudio = append(bulkAudio, ref)
		}
		fileIndex++
	}
	order = append(order, bulkAudio...)
	order = append(order, perPrimaryAudio...)

	for _, track := range job.Primary.Tracks {
		if track.Kind == media.KindAudio && !track.Removed() {
			order = append(order, fmt.Sprintf("0:%d", track.ID))
		}
	}
	for _, track := range job.Primary.Tracks {
		if track.Kind == media.KindSubtitle && !track.Removed() {
			order = append(order, fmt.Sprintf("0:%d", track.ID))
		}
	}

	var bulkSubs, perPrimarySubs []string
	for _, entry := range subtitles {
		ref := fmt.Sprintf("%d:%d", fileIndex, entry.trackID)
		if entry.file.Scope == media.ScopePerPrimary {
			perPrimarySubs = append(perPrimarySubs, ref)
		} else {
			bulkSubs = append(bulkSubs, ref)
		}
		fileIndex++
	}
	order = append(order, bulkSubs...)
	order = append(order, perPrimarySubs...)

	if len(order) == 0 {
		return args
	}
	return append(args, "--track-order", strings.Join(order, ","))
}

// appendExternalEntry emits the flag group for one resolved external
// entry. All other kinds are disabled so only the targeted track is
// pulled from the file. The forced flag is intentionally not emitted for
// audio entries; field mkvmerge versions reject it for audio tracks.
func appendExternalEntry(args []string, entry resolvedEntry, kind media.TrackKind) []string {
	file := entry.file
	switch kind {
	case media.KindAudio:
		args = append(args, "--no-video", "--no-subtitles", "--no-chapters", "--no-attachments", "--no-global-tags")
		args = append(args, "--audio-tracks", strconv.Itoa(entry.trackID))
	case media.KindSubtitle:
		args = append(args, "--no-video", "--no-audio", "--no-chapters", "--no-attachments", "--no-global-tags")
		args = append(args, "--subtitle-tracks", strconv.Itoa(entry.trackID))
	default:
		return args
	}

	override, _ := file.Override(entry.trackID)

	lang := override.Language
	if lang == nil && entry.applyLanguage {
		lang = file.Language
	}
	if lang != nil {
		args = append(args, "--language", fmt.Sprintf("%d:%s", entry.trackID, *lang))
	}

	name := override.Name
	if name == nil {
		name = file.Name
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		args = append(args, "--track-name", fmt.Sprintf("%d:%s", entry.trackID, *name))
	}

	delay := override.Delay
	if delay == nil {
		delay = file.Delay
	}
	if delay != nil {
		args = append(args, "--sync", fmt.Sprintf("%d:%d", entry.trackID, delayMillis(*delay)))
	}

	if entry.isDefault != nil {
		args = append(args, "--default-track-flag", fmt.Sprintf("%d:%s", entry.trackID, yesNo(*entry.isDefault)))
	}
	if kind == media.KindSubtitle && file.Forced != nil {
		args = append(args, "--forced-display-flag", fmt.Sprintf("%d:%s", entry.trackID, yesNo(*file.Forced)))
	}

	return append(args, file.Path)
}

func delayMillis(seconds float64) int64 {
	return int64(seconds * 1000.0)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
