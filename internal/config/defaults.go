package config

const (
	defaultLogDir           = "~/.local/share/remuxd/logs"
	defaultStateDir         = "~/.local/share/remuxd"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultMkvmergeBinary   = "mkvmerge"
	defaultPropeditBinary   = "mkvpropedit"
	defaultMediainfoBinary  = "mediainfo"
	defaultMaxParallelJobs  = 2
	defaultWarningsExitCode = 1
)

// defaultScanExtensions covers the containers mkvmerge commonly ingests.
var defaultScanExtensions = []string{"mkv", "mp4", "m4v", "avi", "mov", "webm", "ts", "m2ts"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Output: Output{
			OverwriteSource:  true,
			WarningsExitCode: defaultWarningsExitCode,
		},
		Mux: Mux{
			MkvmergeBinary:    defaultMkvmergeBinary,
			MkvpropeditBinary: defaultPropeditBinary,
			MediainfoBinary:   defaultMediainfoBinary,
			MaxParallelJobs:   defaultMaxParallelJobs,
			UseFastPath:       true,
		},
		Filters: Filters{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Scan: Scan{
			Extensions: append([]string(nil), defaultScanExtensions...),
			Recursive:  true,
		},
	}
}
