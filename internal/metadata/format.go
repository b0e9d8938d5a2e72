package metadata

import (
	"path/filepath"
	"strings"
)

// Format identifies how tags and stream info are read from a file.
type Format int

const (
	// FormatUnknown is any extension outside the supported set.
	FormatUnknown Format = iota
	// FormatID3 is MP3 with ID3v2 or ID3v1 tags.
	FormatID3
	// FormatMPEG4 is an MPEG-4 container with iTunes-style atoms.
	FormatMPEG4
	// FormatUntagged covers PCM containers the reader takes no tags from.
	FormatUntagged
)

var formatsByExt = map[string]Format{
	".mp3":  FormatID3,
	".m4a":  FormatMPEG4,
	".m4p":  FormatMPEG4,
	".aac":  FormatMPEG4,
	".alac": FormatMPEG4,
	".wav":  FormatUntagged,
	".aif":  FormatUntagged,
	".aiff": FormatUntagged,
}

func (f Format) String() string {
	switch f {
	case FormatID3:
		return "id3"
	case FormatMPEG4:
		return "mpeg4"
	case FormatUntagged:
		return "untagged"
	default:
		return "unknown"
	}
}

// HasTags reports whether title and artist can be read from the format.
func (f Format) HasTags() bool {
	return f == FormatID3 || f == FormatMPEG4
}

// FormatOf maps a path's extension, case-insensitively, to its Format.
func FormatOf(path string) Format {
	return formatsByExt[strings.ToLower(filepath.Ext(path))]
}

// BaseTitle is the fallback title: the file name without its extension.
func BaseTitle(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
