package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "backup.progress_interval")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

var (
	knownLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	knownLogFormats = map[string]bool{"console": true, "json": true}
)

// ValidateConfig checks the configuration for errors and returns all findings.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	var findings []ConfigValidationError
	findings = append(findings, ValidatePaths(cfg)...)
	findings = append(findings, ValidateSettings(cfg)...)

	for _, f := range findings {
		if f.Severity == SeverityError {
			result.Errors = append(result.Errors, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePaths checks the music root and the copy destinations.
// A music root that is missing is only a warning: the device may simply not
// be mounted yet, and every command re-checks it before walking.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errs []ConfigValidationError

	if strings.TrimSpace(cfg.MusicRoot) == "" {
		errs = append(errs, ConfigValidationError{
			Field:    "music_root",
			Message:  "music_root must be set (config file, " + EnvMusicRoot + " or --root)",
			Severity: SeverityError,
		})
		return errs
	}

	info, err := os.Stat(cfg.MusicRoot)
	switch {
	case err != nil && os.IsNotExist(err):
		errs = append(errs, ConfigValidationError{
			Field:    "music_root",
			Message:  "directory does not exist: " + cfg.MusicRoot,
			Severity: SeverityWarning,
		})
	case err != nil:
		errs = append(errs, ConfigValidationError{
			Field:    "music_root",
			Message:  "error accessing directory: " + err.Error(),
			Severity: SeverityWarning,
		})
	case !info.IsDir():
		errs = append(errs, ConfigValidationError{
			Field:    "music_root",
			Message:  "path is not a directory: " + cfg.MusicRoot,
			Severity: SeverityError,
		})
	}

	for field, dest := range map[string]string{
		"search.dest_dir": cfg.Search.DestDir,
		"backup.dest_dir": cfg.Backup.DestDir,
	} {
		if dest == "" {
			continue
		}
		if isWithin(cfg.MusicRoot, dest) {
			errs = append(errs, ConfigValidationError{
				Field:    field,
				Message:  "destination is inside music_root: " + dest,
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// ValidateSettings checks the non-path settings.
func ValidateSettings(cfg *Configuration) []ConfigValidationError {
	var errs []ConfigValidationError

	if cfg.Backup.ProgressInterval <= 0 {
		errs = append(errs, ConfigValidationError{
			Field:    "backup.progress_interval",
			Message:  "must be greater than zero",
			Severity: SeverityError,
		})
	}
	if cfg.Watch.DebounceSeconds < 0 {
		errs = append(errs, ConfigValidationError{
			Field:    "watch.debounce_seconds",
			Message:  "cannot be negative",
			Severity: SeverityError,
		})
	}
	if cfg.Watch.StableThresholdMs < 0 {
		errs = append(errs, ConfigValidationError{
			Field:    "watch.stable_threshold_ms",
			Message:  "cannot be negative",
			Severity: SeverityError,
		})
	}
	if !knownLogLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, ConfigValidationError{
			Field:    "logging.level",
			Message:  "unsupported value " + quote(cfg.Logging.Level) + " (debug, info, warn, error)",
			Severity: SeverityError,
		})
	}
	if !knownLogFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, ConfigValidationError{
			Field:    "logging.format",
			Message:  "unsupported value " + quote(cfg.Logging.Format) + " (console, json)",
			Severity: SeverityError,
		})
	}
	for _, name := range []struct{ field, value string }{
		{"output.song_list", cfg.Output.SongList},
		{"output.problem_report", cfg.Output.ProblemReport},
		{"output.no_artist_report", cfg.Output.NoArtistReport},
	} {
		if strings.TrimSpace(name.value) == "" {
			errs = append(errs, ConfigValidationError{
				Field:    name.field,
				Message:  "cannot be empty",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// isWithin reports whether path lies inside dir.
func isWithin(dir, path string) bool {
	absDir, err1 := filepath.Abs(dir)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func quote(s string) string {
	return "\"" + s + "\""
}
