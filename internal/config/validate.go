package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMux(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMux() error {
	if c.Mux.MaxParallelJobs < 1 {
		return errors.New("mux.max_parallel_jobs must be >= 1")
	}
	if c.Mux.MaxParallelJobs > 64 {
		return fmt.Errorf("mux.max_parallel_jobs of %d is unreasonable; pick something below 64", c.Mux.MaxParallelJobs)
	}
	return nil
}

func (c *Config) validateFilters() error {
	if c.Filters.KeepAudioEnabled && len(c.Filters.KeepAudioLanguages) == 0 {
		return errors.New("filters.keep_audio_languages must include at least one language when filters.keep_audio_enabled is true")
	}
	if c.Filters.KeepSubtitlesEnabled && len(c.Filters.KeepSubtitleLanguages) == 0 {
		return errors.New("filters.keep_subtitle_languages must include at least one language when filters.keep_subtitles_enabled is true")
	}
	return nil
}
