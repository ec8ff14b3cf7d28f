// Package scan discovers remuxable source files on disk and turns them
// into jobs by probing their track layout.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"

	"remuxd/internal/media"
	"remuxd/internal/media/probe"
)

var titleCaser = cases.Title(xlang.English)

// Discover walks root and returns the files whose extension is in the
// allow-list, sorted for stable job ordering. Non-recursive mode only
// looks at the top level.
func Discover(root string, extensions []string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		if matchesExtension(root, extensions) {
			return []string{root}, nil
		}
		return nil, nil
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
		if _, ok := allowed[ext]; ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}

func matchesExtension(path string, extensions []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, allowed := range extensions {
		if ext == strings.ToLower(strings.TrimPrefix(allowed, ".")) {
			return true
		}
	}
	return false
}

// DisplayTitle derives a human-readable title from a file path:
// separators become spaces and words are title-cased.
func DisplayTitle(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	replacer := strings.NewReplacer(".", " ", "_", " ", "-", " ")
	cleaned := strings.Join(strings.Fields(replacer.Replace(stem)), " ")
	if cleaned == "" {
		return stem
	}
	return titleCaser.String(cleaned)
}

// BuildJobs probes each source and constructs one job per file with the
// probed track layout. Files that fail to probe are skipped and
// reported, not fatal; one unreadable file must not sink a batch.
func BuildJobs(ctx context.Context, prober probe.Prober, paths []string) ([]media.Job, []error) {
	var (
		jobs []media.Job
		errs []error
	)
	for _, path := range paths {
		info, err := prober.Probe(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("probe %s: %w", path, err))
			continue
		}
		size := int64(0)
		if stat, err := os.Stat(path); err == nil {
			size = stat.Size()
		}
		jobs = append(jobs, media.Job{
			ID: media.NewJobID(),
			Primary: media.PrimaryFile{
				Path:   path,
				Size:   size,
				Tracks: tracksFromProbe(info.Tracks),
			},
		})
	}
	return jobs, errs
}

func tracksFromProbe(infos []probe.TrackInfo) []media.Track {
	tracks := make([]media.Track, 0, len(infos))
	for _, info := range infos {
		track := media.Track{
			ID:      info.ID,
			Kind:    info.Kind,
			Default: info.Default,
			Forced:  info.Forced,
			Action:  media.ActionKeep,
		}
		if info.Language != "" {
			lang := info.Language
			track.Language = &lang
		}
		if info.Name != "" {
			name := info.Name
			track.Name = &name
		}
		tracks = append(tracks, track)
	}
	return tracks
}
