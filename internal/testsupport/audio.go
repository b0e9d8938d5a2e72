// Package testsupport builds audio fixtures for tests.
package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// Silent MPEG-1 Layer III frames: 32 kbps, 32 kHz, mono, no CRC, no padding.
// Each frame is 144 bytes and holds 1152 samples.
const (
	mp3SampleRate      = 32000
	mp3SamplesPerFrame = 1152
	mp3FrameSize       = 144
)

var mp3FrameHeader = []byte{0xFF, 0xFB, 0x18, 0xC0}

// TagVersion selects the tag layout written into an MP3 fixture.
type TagVersion int

const (
	// ID3v24 is an ID3v2.4 tag written with bogem/id3v2.
	ID3v24 TagVersion = iota
	// ID3v22 is an ID3v2.2 tag with three-letter frame ids, as old iTunes wrote.
	ID3v22
	// ID3v1 is a 128-byte ID3v1 trailer and no ID3v2 tag.
	ID3v1
)

// MP3 describes a synthetic MP3 fixture.
type MP3 struct {
	Title   string
	Artist  string
	Seconds int
	Version TagVersion
	// NoTag leaves the file without any ID3 tag.
	NoTag bool
}

// WriteMP3 writes a decodable MP3 of at least Seconds length (and less than
// Seconds+1) to path, tagged with the given fields.
func WriteMP3(tb testing.TB, path string, want MP3) {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("create fixture dir: %v", err)
	}

	frames := (want.Seconds*mp3SampleRate + mp3SamplesPerFrame - 1) / mp3SamplesPerFrame
	if frames == 0 {
		frames = 1
	}
	frame := make([]byte, mp3FrameSize)
	copy(frame, mp3FrameHeader)

	var buf bytes.Buffer
	buf.Grow(frames*mp3FrameSize + id3v1Size)
	if !want.NoTag && want.Version == ID3v22 {
		buf.Write(id3v22Tag(want.Title, want.Artist))
	}
	for i := 0; i < frames; i++ {
		buf.Write(frame)
	}
	if !want.NoTag && want.Version == ID3v1 {
		buf.Write(id3v1Tag(want.Title, want.Artist))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		tb.Fatalf("write fixture %s: %v", path, err)
	}

	if want.NoTag || want.Version != ID3v24 {
		return
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		tb.Fatalf("open fixture tag %s: %v", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if want.Title != "" {
		tag.SetTitle(want.Title)
	}
	if want.Artist != "" {
		tag.SetArtist(want.Artist)
	}
	if want.Title == "" && want.Artist == "" {
		// keep a tag block present so the title reads as empty, not missing
		tag.SetAlbum("fixture")
	}
	if err := tag.Save(); err != nil {
		tb.Fatalf("save fixture tag %s: %v", path, err)
	}
}

const id3v1Size = 128

// id3v22Tag builds an ID3v2.2 tag with TT2 and TP1 frames in ISO-8859-1.
func id3v22Tag(title, artist string) []byte {
	var frames bytes.Buffer
	for _, f := range []struct{ id, value string }{{"TT2", title}, {"TP1", artist}} {
		if f.value == "" {
			continue
		}
		size := len(f.value) + 1
		frames.WriteString(f.id)
		frames.Write([]byte{byte(size >> 16), byte(size >> 8), byte(size)})
		frames.WriteByte(0x00)
		frames.WriteString(f.value)
	}

	n := frames.Len()
	header := []byte{'I', 'D', '3', 0x02, 0x00, 0x00,
		byte(n>>21) & 0x7F, byte(n>>14) & 0x7F, byte(n>>7) & 0x7F, byte(n) & 0x7F}
	return append(header, frames.Bytes()...)
}

// id3v1Tag builds a 128-byte ID3v1 trailer. Fields longer than 30 bytes
// are cut.
func id3v1Tag(title, artist string) []byte {
	b := make([]byte, id3v1Size)
	copy(b, "TAG")
	copy(b[3:33], title)
	copy(b[33:63], artist)
	return b
}

// WriteFile writes raw bytes to path, creating parent directories.
func WriteFile(tb testing.TB, path string, data []byte) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write fixture %s: %v", path, err)
	}
}
