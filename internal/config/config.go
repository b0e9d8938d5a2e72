// Package config handles configuration loading and validation for podscan.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	ReadFailed      ConfigErrorType = "READ_FAILED"
	InvalidTOML     ConfigErrorType = "INVALID_TOML"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
	WriteFailed     ConfigErrorType = "WRITE_FAILED"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case ReadFailed:
		return fmt.Sprintf("cannot read configuration file %s: %s", e.Path, e.Message)
	case InvalidTOML:
		return fmt.Sprintf("invalid TOML in configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	case WriteFailed:
		return fmt.Sprintf("failed to write configuration file %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Environment variables that override file settings.
const (
	EnvMusicRoot = "PODSCAN_MUSIC_ROOT"
	EnvOutputDir = "PODSCAN_OUTPUT_DIR"
	EnvLogLevel  = "PODSCAN_LOG_LEVEL"
)

// Output holds report file locations. Relative paths resolve against Dir.
type Output struct {
	Dir            string `toml:"dir"`
	SongList       string `toml:"song_list"`
	ProblemReport  string `toml:"problem_report"`
	NoArtistReport string `toml:"no_artist_report"`
}

// Search holds search-and-copy settings.
type Search struct {
	DestDir string `toml:"dest_dir"`
}

// Backup holds backup settings.
type Backup struct {
	DestDir          string `toml:"dest_dir"`
	ProgressInterval int    `toml:"progress_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Watch holds watch-mode settings.
type Watch struct {
	DebounceSeconds   int `toml:"debounce_seconds"`
	// StableThresholdMs is how long a changed file's size must hold still
	// before a run starts. Zero disables the check.
	StableThresholdMs int `toml:"stable_threshold_ms"`
}

// Validator holds title validation settings.
type Validator struct {
	// ExtraDenied lists extra characters that mark a title as garbled.
	ExtraDenied []string `toml:"extra_denied"`
}

// Configuration holds all settings for podscan.
type Configuration struct {
	MusicRoot string    `toml:"music_root"`
	Output    Output    `toml:"output"`
	Search    Search    `toml:"search"`
	Backup    Backup    `toml:"backup"`
	Logging   Logging   `toml:"logging"`
	Watch     Watch     `toml:"watch"`
	Validator Validator `toml:"validator"`
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return &Configuration{
		Output: Output{
			Dir:            ".",
			SongList:       "songs_list_clean.txt",
			ProblemReport:  "problem_songs.txt",
			NoArtistReport: "songs_without_artist.txt",
		},
		Search: Search{DestDir: "found"},
		Backup: Backup{DestDir: "backup", ProgressInterval: 100},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Watch: Watch{DebounceSeconds: 2, StableThresholdMs: 1000},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/podscan/config.toml, or
// ~/.config/podscan/config.toml.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "podscan", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "podscan", "config.toml"), nil
}

// Load reads the configuration. An explicit path must exist; with an empty
// path the default location is used if present and built-in defaults
// otherwise. Environment overrides are applied; validation is left to the
// caller once flag overrides are in.
func Load(filePath string) (*Configuration, error) {
	cfg := Default()

	path := filePath
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			ApplyEnv(cfg, os.Getenv)
			return cfg, nil
		}
		path = p
	}

	path = ExpandTilde(path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, path, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file; defaults apply
	case errors.Is(err, os.ErrNotExist):
		return nil, &ConfigError{Type: FileNotFound, Path: path, Err: err}
	default:
		return nil, &ConfigError{Type: ReadFailed, Path: path, Message: err.Error(), Err: err}
	}

	ApplyEnv(cfg, os.Getenv)
	return cfg, nil
}

func decode(data []byte, path string, cfg *Configuration) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return &ConfigError{Type: InvalidTOML, Path: path, Message: err.Error()}
	}
	cfg.normalize()
	return nil
}

// ApplyEnv applies PODSCAN_* overrides read through getenv.
func ApplyEnv(cfg *Configuration, getenv func(string) string) {
	if v := getenv(EnvMusicRoot); v != "" {
		cfg.MusicRoot = ExpandTilde(v)
	}
	if v := getenv(EnvOutputDir); v != "" {
		cfg.Output.Dir = ExpandTilde(v)
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Configuration) normalize() {
	c.MusicRoot = ExpandTilde(strings.TrimSpace(c.MusicRoot))
	c.Output.Dir = ExpandTilde(strings.TrimSpace(c.Output.Dir))
	c.Search.DestDir = ExpandTilde(strings.TrimSpace(c.Search.DestDir))
	c.Backup.DestDir = ExpandTilde(strings.TrimSpace(c.Backup.DestDir))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate checks that the configuration has all required fields.
func (c *Configuration) Validate() error {
	result := ValidateConfig(c)
	if result.Valid {
		return nil
	}
	msgs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return &ConfigError{Type: ValidationError, Message: strings.Join(msgs, "; ")}
}

// ReportPath resolves a report file name against Output.Dir.
func (c *Configuration) ReportPath(name string) string {
	name = ExpandTilde(name)
	if filepath.IsAbs(name) || c.Output.Dir == "" {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// ExtraDeniedRunes flattens Validator.ExtraDenied into runes.
func (c *Configuration) ExtraDeniedRunes() []rune {
	var out []rune
	for _, s := range c.Validator.ExtraDenied {
		out = append(out, []rune(s)...)
	}
	return out
}

// Save serializes and writes a configuration to the given path.
func Save(cfg *Configuration, filePath string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return &ConfigError{Type: InvalidTOML, Path: filePath, Message: err.Error()}
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &ConfigError{Type: WriteFailed, Path: filePath, Message: err.Error()}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{Type: WriteFailed, Path: filePath, Message: err.Error()}
	}
	return nil
}

// ExpandTilde replaces a leading "~/" with the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
