// Package jobfile reads TOML job definitions and resolves them into
// fully-probed jobs ready for synthesis.
package jobfile

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"remuxd/internal/media"
	"remuxd/internal/media/probe"
)

// File is the top-level structure of a jobs file.
type File struct {
	// Bulk external files attach to every job in the batch.
	Bulk BulkFiles `toml:"bulk"`
	Jobs []JobDef  `toml:"job"`
}

// BulkFiles lists external sources shared by all jobs.
type BulkFiles struct {
	Audio    []ExternalDef `toml:"audio"`
	Subtitle []ExternalDef `toml:"subtitle"`
}

// JobDef describes one job: a primary file, edits to its tracks, and
// external sources bound to it.
type JobDef struct {
	Primary     string        `toml:"primary"`
	Tracks      []TrackEdit   `toml:"track"`
	Audio       []ExternalDef `toml:"audio"`
	Subtitle    []ExternalDef `toml:"subtitle"`
	Chapters    []ExternalDef `toml:"chapters"`
	Attachment  []ExternalDef `toml:"attachment"`
}

// TrackEdit modifies one probed primary track by id. Unset pointer
// fields leave the probed value alone; a set-but-empty name clears it.
type TrackEdit struct {
	ID       int      `toml:"id"`
	Remove   bool     `toml:"remove"`
	Name     *string  `toml:"name"`
	Language *string  `toml:"language"`
	Default  *bool    `toml:"default"`
	Forced   *bool    `toml:"forced"`
}

// ExternalDef describes one external file. Tracks distinguishes unset
// (nil pointer, resolution probes the file) from an explicit empty list
// (file skipped). IncludeSubtitles applies to audio files only and
// merges the file's text tracks alongside its audio; SubtitleTracks
// limits which ones the same way Tracks does.
type ExternalDef struct {
	Path             string        `toml:"path"`
	Tracks           *[]int        `toml:"tracks"`
	TrackID          *int          `toml:"track_id"`
	Language         *string       `toml:"language"`
	Name             *string       `toml:"name"`
	Delay            *float64      `toml:"delay"`
	Default          *bool         `toml:"default"`
	Forced           *bool         `toml:"forced"`
	IncludeSubtitles bool          `toml:"include_subtitles"`
	SubtitleTracks   *[]int        `toml:"subtitle_tracks"`
	Overrides        []OverrideDef `toml:"override"`
}

// OverrideDef carries per-track property overrides for multi-track
// external files.
type OverrideDef struct {
	Track    int      `toml:"track"`
	Language *string  `toml:"language"`
	Name     *string  `toml:"name"`
	Delay    *float64 `toml:"delay"`
}

// Load parses the jobs file at path and validates its shape.
func Load(path string) (*File, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jobs file: %w", err)
	}
	defer handle.Close()

	var file File
	decoder := toml.NewDecoder(handle)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse jobs file: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	if len(f.Jobs) == 0 {
		return fmt.Errorf("jobs file defines no jobs")
	}
	for i, job := range f.Jobs {
		if job.Primary == "" {
			return fmt.Errorf("job %d: primary path is required", i+1)
		}
		groups := [][]ExternalDef{job.Audio, job.Subtitle, job.Chapters, job.Attachment}
		for _, group := range groups {
			for _, def := range group {
				if def.Path == "" {
					return fmt.Errorf("job %d (%s): external file without path", i+1, job.Primary)
				}
			}
		}
	}
	for _, def := range append(append([]ExternalDef{}, f.Bulk.Audio...), f.Bulk.Subtitle...) {
		if def.Path == "" {
			return fmt.Errorf("bulk external file without path")
		}
	}
	return nil
}

// Resolve probes every primary file, applies the declared track edits,
// and attaches external sources. Bulk files are shared by each job.
func Resolve(ctx context.Context, prober probe.Prober, file *File) ([]media.Job, error) {
	jobs := make([]media.Job, 0, len(file.Jobs))
	for _, def := range file.Jobs {
		job, err := resolveJob(ctx, prober, def, file.Bulk)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func resolveJob(ctx context.Context, prober probe.Prober, def JobDef, bulk BulkFiles) (media.Job, error) {
	info, err := prober.Probe(ctx, def.Primary)
	if err != nil {
		return media.Job{}, fmt.Errorf("probe %s: %w", def.Primary, err)
	}

	tracks := make([]media.Track, 0, len(info.Tracks))
	byID := make(map[int]int, len(info.Tracks))
	for i, probed := range info.Tracks {
		track := media.Track{
			ID:      probed.ID,
			Kind:    probed.Kind,
			Default: probed.Default,
			Forced:  probed.Forced,
			Action:  media.ActionKeep,
		}
		if probed.Language != "" {
			lang := probed.Language
			track.Language = &lang
		}
		if probed.Name != "" {
			name := probed.Name
			track.Name = &name
		}
		tracks = append(tracks, track)
		byID[probed.ID] = i
	}

	for _, edit := range def.Tracks {
		index, ok := byID[edit.ID]
		if !ok {
			return media.Job{}, fmt.Errorf("%s: no track with id %d", def.Primary, edit.ID)
		}
		track := &tracks[index]
		if edit.Remove {
			track.Action = media.ActionRemove
		}
		if edit.Name != nil {
			track.Name = edit.Name
		}
		if edit.Language != nil {
			track.Language = edit.Language
		}
		if edit.Default != nil {
			track.Default = edit.Default
		}
		if edit.Forced != nil {
			track.Forced = edit.Forced
		}
	}

	size := int64(0)
	if stat, err := os.Stat(def.Primary); err == nil {
		size = stat.Size()
	}

	job := media.Job{
		ID: media.NewJobID(),
		Primary: media.PrimaryFile{
			Path:   def.Primary,
			Size:   size,
			Tracks: tracks,
		},
	}
	job.Audios = append(
		externalFiles(bulk.Audio, media.KindAudio, media.ScopeBulk),
		externalFiles(def.Audio, media.KindAudio, media.ScopePerPrimary)...,
	)
	job.Subtitles = append(
		externalFiles(bulk.Subtitle, media.KindSubtitle, media.ScopeBulk),
		externalFiles(def.Subtitle, media.KindSubtitle, media.ScopePerPrimary)...,
	)
	job.Chapters = externalFiles(def.Chapters, media.KindChapter, media.ScopePerPrimary)
	job.Attachments = externalFiles(def.Attachment, media.KindAttachment, media.ScopePerPrimary)
	return job, nil
}

func externalFiles(defs []ExternalDef, kind media.TrackKind, scope media.FileScope) []media.ExternalFile {
	if len(defs) == 0 {
		return nil
	}
	files := make([]media.ExternalFile, 0, len(defs))
	for _, def := range defs {
		file := media.ExternalFile{
			Path:     def.Path,
			Kind:     kind,
			Scope:    scope,
			TrackID:  def.TrackID,
			Language: def.Language,
			Name:     def.Name,
			Delay:    def.Delay,
			Default:  def.Default,
			Forced:   def.Forced,
		}
		if def.Tracks != nil {
			selected := *def.Tracks
			if selected == nil {
				selected = []int{}
			}
			file.SelectedTrackIDs = selected
		}
		if kind == media.KindAudio && def.IncludeSubtitles {
			file.IncludeSubtitles = true
			if def.SubtitleTracks != nil {
				included := *def.SubtitleTracks
				if included == nil {
					included = []int{}
				}
				file.IncludedSubtitleTrackIDs = included
			}
		}
		if len(def.Overrides) > 0 {
			file.Overrides = make(map[int]media.TrackOverride, len(def.Overrides))
			for _, override := range def.Overrides {
				file.Overrides[override.Track] = media.TrackOverride{
					Language: override.Language,
					Name:     override.Name,
					Delay:    override.Delay,
				}
			}
		}
		files = append(files, file)
	}
	return files
}
