package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"remuxd/internal/media"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DestinationDir receives remuxed outputs. Empty selects
	// overwrite-source mode.
	DestinationDir string `toml:"destination_dir"`
	LogDir         string `toml:"log_dir"`
	// StateDir holds the job history database and session lock.
	StateDir string `toml:"state_dir"`
}

// Output controls how finished files are finalized.
type Output struct {
	OverwriteSource bool `toml:"overwrite_source"`
	AddCRC          bool `toml:"add_crc"`
	RemoveOldCRC    bool `toml:"remove_old_crc"`
	KeepLogFile     bool `toml:"keep_log_file"`
	// WarningsExitCode is the mkvmerge exit code treated as success
	// when the output file exists. Negative disables the exception.
	WarningsExitCode int `toml:"warnings_exit_code"`
}

// Mux contains tool binaries and worker pool settings.
type Mux struct {
	MkvmergeBinary    string `toml:"mkvmerge_binary"`
	MkvpropeditBinary string `toml:"mkvpropedit_binary"`
	MediainfoBinary   string `toml:"mediainfo_binary"`
	MaxParallelJobs   int    `toml:"max_parallel_jobs"`
	AbortOnErrors     bool   `toml:"abort_on_errors"`
	UseFastPath       bool   `toml:"use_fast_path"`
}

// Filters contains track filtering and property promotion settings.
type Filters struct {
	KeepAudioEnabled            bool     `toml:"keep_audio_enabled"`
	KeepAudioLanguages          []string `toml:"keep_audio_languages"`
	KeepSubtitlesEnabled        bool     `toml:"keep_subtitles_enabled"`
	KeepSubtitleLanguages       []string `toml:"keep_subtitle_languages"`
	DiscardOldChapters          bool     `toml:"discard_old_chapters"`
	DiscardOldAttachments       bool     `toml:"discard_old_attachments"`
	RemoveGlobalTags            bool     `toml:"remove_global_tags"`
	MakeAudioDefaultLanguage    string   `toml:"make_audio_default_language"`
	MakeSubtitleDefaultLanguage string   `toml:"make_subtitle_default_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Scan controls directory scanning for primary files.
type Scan struct {
	Extensions []string `toml:"extensions"`
	Recursive  bool     `toml:"recursive"`
}

// Config encapsulates all configuration values.
//
// Configuration sections by subsystem:
//   - Paths: destination, log, and state directories
//   - Output: finalization behaviour (overwrite, CRC stamps, logs)
//   - Mux: tool binaries and the worker pool
//   - Filters: language filters and container-level strips
//   - Logging: log format and level
//   - Scan: source discovery
type Config struct {
	Paths   Paths   `toml:"paths"`
	Output  Output  `toml:"output"`
	Mux     Mux     `toml:"mux"`
	Filters Filters `toml:"filters"`
	Logging Logging `toml:"logging"`
	Scan    Scan    `toml:"scan"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/remuxd/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/remuxd/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("remuxd.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a session needs. The
// destination is created on a best-effort basis so configuration can
// load while external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.DestinationDir) != "" {
		_ = os.MkdirAll(c.Paths.DestinationDir, 0o755)
	}
	return nil
}

// Settings maps the configuration onto the muxing policy consumed by the
// synthesizer and scheduler.
func (c *Config) Settings() media.Settings {
	return media.Settings{
		DestinationDir:              c.Paths.DestinationDir,
		OverwriteSource:             c.Output.OverwriteSource,
		AddCRC:                      c.Output.AddCRC,
		RemoveOldCRC:                c.Output.RemoveOldCRC,
		KeepLogFile:                 c.Output.KeepLogFile,
		WarningsExitCode:            c.Output.WarningsExitCode,
		AbortOnErrors:               c.Mux.AbortOnErrors,
		MaxParallelJobs:             c.Mux.MaxParallelJobs,
		UseFastPath:                 c.Mux.UseFastPath,
		KeepAudioEnabled:            c.Filters.KeepAudioEnabled,
		KeepAudioLanguages:          c.Filters.KeepAudioLanguages,
		KeepSubtitlesEnabled:        c.Filters.KeepSubtitlesEnabled,
		KeepSubtitleLanguages:       c.Filters.KeepSubtitleLanguages,
		DiscardOldChapters:          c.Filters.DiscardOldChapters,
		DiscardOldAttachments:       c.Filters.DiscardOldAttachments,
		RemoveGlobalTags:            c.Filters.RemoveGlobalTags,
		MakeAudioDefaultLanguage:    c.Filters.MakeAudioDefaultLanguage,
		MakeSubtitleDefaultLanguage: c.Filters.MakeSubtitleDefaultLanguage,
	}
}

// HistoryDBPath returns the job history database location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// SessionLockPath returns the advisory session lock location.
func (c *Config) SessionLockPath() string {
	return filepath.Join(c.Paths.StateDir, "session.lock")
}

// SessionLogPath returns the session transcript location.
func (c *Config) SessionLogPath() string {
	return filepath.Join(c.Paths.LogDir, "session.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
