package media

import "strings"

// Settings is the global muxing policy applied to every job in a session.
type Settings struct {
	// DestinationDir receives outputs; empty selects overwrite-source mode.
	DestinationDir  string
	OverwriteSource bool

	AddCRC       bool
	RemoveOldCRC bool
	KeepLogFile  bool

	AbortOnErrors   bool
	MaxParallelJobs int

	KeepAudioEnabled      bool
	KeepSubtitlesEnabled  bool
	KeepAudioLanguages    []string
	KeepSubtitleLanguages []string

	DiscardOldChapters    bool
	DiscardOldAttachments bool
	RemoveGlobalTags      bool

	MakeAudioDefaultLanguage    string
	MakeSubtitleDefaultLanguage string

	UseFastPath bool

	// WarningsExitCode is the external tool exit code treated as
	// success-with-warnings when the output file exists. Negative
	// disables the exception.
	WarningsExitCode int
}

// OverwriteMode reports whether outputs replace the source file in place.
func (s Settings) OverwriteMode() bool {
	return strings.TrimSpace(s.DestinationDir) == "" || s.OverwriteSource
}

// AudioFilterActive reports whether the audio keep-language filter applies.
func (s Settings) AudioFilterActive() bool {
	return s.KeepAudioEnabled && len(s.KeepAudioLanguages) > 0
}

// SubtitleFilterActive reports whether the subtitle keep-language filter applies.
func (s Settings) SubtitleFilterActive() bool {
	return s.KeepSubtitlesEnabled && len(s.KeepSubtitleLanguages) > 0
}

// Workers returns the effective worker count for a queue of the given length.
func (s Settings) Workers(queueLength int) int {
	workers := s.MaxParallelJobs
	if workers < 1 {
		workers = 1
	}
	if queueLength > 0 && workers > queueLength {
		workers = queueLength
	}
	return workers
}
