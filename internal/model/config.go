package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all coursegrid settings
type Config struct {
	LogLevel    string            `yaml:"log_level" mapstructure:"log_level"`
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Decode      DecodeConfig      `yaml:"decode" mapstructure:"decode"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Merge       MergeConfig       `yaml:"merge" mapstructure:"merge"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Download    DownloadConfig    `yaml:"download" mapstructure:"download"`
}

// InputConfig selects the timetable pages to read
type InputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"` // Glob matched against file names in Dir
}

// OutputConfig controls JSON rendering
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// DecodeConfig lists encodings tried in strict mode, in priority order
type DecodeConfig struct {
	Encodings []string `yaml:"encodings" mapstructure:"encodings"`
}

// ExtractConfig controls row classification and title markers
type ExtractConfig struct {
	MinCells      int    `yaml:"min_cells" mapstructure:"min_cells"`
	StrictRows    bool   `yaml:"strict_rows" mapstructure:"strict_rows"` // Require a numeric seq cell; ignore code-only rows
	DeptMarker    string `yaml:"dept_marker" mapstructure:"dept_marker"`
	EnglishMarker string `yaml:"english_marker" mapstructure:"english_marker"`
	CampusMarker  string `yaml:"campus_marker" mapstructure:"campus_marker"`
	CampusNote    string `yaml:"campus_note" mapstructure:"campus_note"`
}

// MergeConfig toggles TA row folding
type MergeConfig struct {
	TA bool `yaml:"ta" mapstructure:"ta"`
}

// ConcurrencyConfig bounds per-file decode and parse workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DownloadConfig describes where the timetable archive lives
type DownloadConfig struct {
	URLTemplate   string        `yaml:"url_template" mapstructure:"url_template"` // %s is replaced by the term code
	Prefix        string        `yaml:"prefix" mapstructure:"prefix"`             // Only archive entries under this path are extracted
	DestDir       string        `yaml:"dest_dir" mapstructure:"dest_dir"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	CacheDir      string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheTTL      time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Input: InputConfig{
			Dir:     "data",
			Pattern: "*.htm",
		},
		Output: OutputConfig{
			Path: "courses.json",
		},
		Decode: DecodeConfig{
			Encodings: []string{"utf-8", "cp950", "big5"},
		},
		Extract: ExtractConfig{
			MinCells:      15,
			DeptMarker:    "系別(Department)：",
			EnglishMarker: "全英語授課",
			CampusMarker:  "蘭陽校園",
			CampusNote:    "蘭陽校園",
		},
		Merge: MergeConfig{
			TA: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Download: DownloadConfig{
			URLTemplate:   "https://esquery.tku.edu.tw/acad/upload/%sCLASS.RAR",
			Prefix:        "CLASS/data/",
			DestDir:       "data",
			Timeout:       2 * time.Minute,
			UserAgent:     "coursegrid/0.1 (+https://github.com/ppiankov/coursegrid)",
			MaxBytes:      200_000_000,
			RespectRobots: true,
			CacheDir:      defaultCacheDir(),
			CacheTTL:      12 * time.Hour,
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".coursegrid", "cache")
	}
	return filepath.Join(home, ".coursegrid", "cache")
}
