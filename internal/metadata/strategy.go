package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/go-mp3"
	"go.senan.xyz/taglib"
)

var (
	// ErrNoTag is returned when an MP3 carries neither an ID3v2 nor an ID3v1 tag.
	ErrNoTag = errors.New("no ID3 tag")
	// ErrUntagged is returned for formats that are never read for tags.
	ErrUntagged = errors.New("format has no tag support")
	// ErrUnsupportedFormat is returned for extensions outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	errNotMPEG4 = errors.New("not an MPEG-4 container")
	errNotID3   = errors.New("not an ID3 tagged file")
)

// strategy reads tags and stream length for one Format.
type strategy interface {
	readTags(path string) (Tags, error)
	// readDuration returns the decoded stream length in fractional seconds.
	readDuration(path string) (float64, error)
}

type id3Strategy struct{}

// readTags prefers an ID3v2 tag (2.2, 2.3 or 2.4) at the start of the file
// and falls back to an ID3v1 tag in its last 128 bytes.
func (id3Strategy) readTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return Tags{}, ErrNoTag
	}
	if err != nil {
		return Tags{}, err
	}
	switch m.Format() {
	case tag.ID3v1, tag.ID3v2_2, tag.ID3v2_3, tag.ID3v2_4:
	default:
		return Tags{}, fmt.Errorf("%w: found %s", errNotID3, m.Format())
	}
	return Tags{Title: m.Title(), Artist: m.Artist()}, nil
}

func (id3Strategy) readDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}
	if d.Length() <= 0 || d.SampleRate() <= 0 {
		return 0, fmt.Errorf("mp3 stream length unknown")
	}

	// Length is in bytes of 16-bit stereo PCM.
	const bytesPerSample = 4
	samples := d.Length() / bytesPerSample
	return float64(samples) / float64(d.SampleRate()), nil
}

type mpeg4Strategy struct{}

func (mpeg4Strategy) readTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	format, _, err := tag.Identify(f)
	if err != nil {
		return Tags{}, err
	}
	if format != tag.MP4 {
		return Tags{}, errNotMPEG4
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Tags{}, err
	}

	m, err := tag.ReadAtoms(f)
	if err != nil {
		return Tags{}, err
	}
	// ©nam and ©ART
	return Tags{Title: m.Title(), Artist: m.Artist()}, nil
}

func (mpeg4Strategy) readDuration(path string) (float64, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return 0, err
	}
	return props.Length.Seconds(), nil
}

type untaggedStrategy struct{}

func (untaggedStrategy) readTags(string) (Tags, error) {
	return Tags{}, ErrUntagged
}

func (untaggedStrategy) readDuration(string) (float64, error) {
	return 0, nil
}
