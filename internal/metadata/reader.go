// Package metadata reads title, artist and duration from audio files.
//
// Each supported Format has its own strategy: ID3 tags plus decoded MP3
// frames for .mp3, iTunes atoms plus container properties for MPEG-4, and
// nothing at all for PCM containers. Title and duration reads never fail;
// they degrade to the file name and zero.
package metadata

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Tags holds the string tag fields podscan cares about.
type Tags struct {
	Title  string
	Artist string
}

// Record is everything known about one audio file after a read.
type Record struct {
	Path            string
	Extension       string // lower-case, with leading dot
	Format          Format
	Title           string
	Artist          string
	DurationSeconds int
}

// Reader dispatches reads to the strategy for each file's Format.
type Reader struct {
	logger     *slog.Logger
	strategies map[Format]strategy
}

// NewReader returns a Reader for all supported formats. A nil logger
// discards log output.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{
		logger: logger,
		strategies: map[Format]strategy{
			FormatID3:      id3Strategy{},
			FormatMPEG4:    mpeg4Strategy{},
			FormatUntagged: untaggedStrategy{},
		},
	}
}

func (r *Reader) strategyFor(path string) (strategy, Format) {
	format := FormatOf(path)
	s, ok := r.strategies[format]
	if !ok {
		return nil, format
	}
	return s, format
}

// ReadTags reads title and artist straight from the file's tags, without the
// file-name fallback. Untagged and unknown formats return an error.
func (r *Reader) ReadTags(path string) (Tags, error) {
	s, format := r.strategyFor(path)
	if s == nil {
		return Tags{}, ErrUnsupportedFormat
	}
	if !format.HasTags() {
		return Tags{}, ErrUntagged
	}
	return s.readTags(path)
}

// ReadTitle returns the title tag. When the tags cannot be read it returns
// the file name without extension instead. A readable tag block without a
// title yields "".
func (r *Reader) ReadTitle(path string) string {
	title, _ := r.readTitleAndArtist(path)
	return title
}

func (r *Reader) readTitleAndArtist(path string) (string, string) {
	s, _ := r.strategyFor(path)
	if s == nil {
		r.logger.Debug("title fallback", "path", path, "error", ErrUnsupportedFormat)
		return BaseTitle(path), ""
	}
	tags, err := s.readTags(path)
	if err != nil {
		r.logger.Debug("title fallback", "path", path, "error", err)
		return BaseTitle(path), ""
	}
	return tags.Title, tags.Artist
}

// ReadDuration returns the stream length truncated to whole seconds, or 0
// if it cannot be determined.
func (r *Reader) ReadDuration(path string) int {
	s, _ := r.strategyFor(path)
	if s == nil {
		return 0
	}
	seconds, err := s.readDuration(path)
	if err != nil {
		r.logger.Debug("duration unavailable", "path", path, "error", err)
		return 0
	}
	if seconds < 0 {
		return 0
	}
	return int(seconds)
}

// Inspect builds a Record for path. The duration is always read. The
// returned error is non-nil only when the file itself cannot be opened; tag
// problems degrade to the title fallback instead.
func (r *Reader) Inspect(path string) (Record, error) {
	ext := strings.ToLower(filepath.Ext(path))
	rec := Record{
		Path:            path,
		Extension:       ext,
		Format:          FormatOf(path),
		DurationSeconds: r.ReadDuration(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return rec, err
	}
	f.Close()

	rec.Title, rec.Artist = r.readTitleAndArtist(path)
	return rec, nil
}
