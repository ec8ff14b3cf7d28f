package config

import (
	"fmt"
	"strings"

	"remuxd/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMux()
	c.normalizeFilters()
	c.normalizeLogging()
	c.normalizeScan()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.DestinationDir = strings.TrimSpace(c.Paths.DestinationDir)
	if c.Paths.DestinationDir != "" {
		if c.Paths.DestinationDir, err = expandPath(c.Paths.DestinationDir); err != nil {
			return fmt.Errorf("paths.destination_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMux() {
	c.Mux.MkvmergeBinary = strings.TrimSpace(c.Mux.MkvmergeBinary)
	if c.Mux.MkvmergeBinary == "" {
		c.Mux.MkvmergeBinary = defaultMkvmergeBinary
	}
	c.Mux.MkvpropeditBinary = strings.TrimSpace(c.Mux.MkvpropeditBinary)
	if c.Mux.MkvpropeditBinary == "" {
		c.Mux.MkvpropeditBinary = defaultPropeditBinary
	}
	c.Mux.MediainfoBinary = strings.TrimSpace(c.Mux.MediainfoBinary)
	if c.Mux.MediainfoBinary == "" {
		c.Mux.MediainfoBinary = defaultMediainfoBinary
	}
	if c.Mux.MaxParallelJobs < 1 {
		c.Mux.MaxParallelJobs = defaultMaxParallelJobs
	}
}

func (c *Config) normalizeFilters() {
	c.Filters.KeepAudioLanguages = language.NormalizeList(c.Filters.KeepAudioLanguages)
	c.Filters.KeepSubtitleLanguages = language.NormalizeList(c.Filters.KeepSubtitleLanguages)
	c.Filters.MakeAudioDefaultLanguage = strings.TrimSpace(c.Filters.MakeAudioDefaultLanguage)
	c.Filters.MakeSubtitleDefaultLanguage = strings.TrimSpace(c.Filters.MakeSubtitleDefaultLanguage)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeScan() {
	exts := make([]string, 0, len(c.Scan.Extensions))
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append([]string(nil), defaultScanExtensions...)
	}
	c.Scan.Extensions = exts
}
