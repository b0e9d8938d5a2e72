package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscan/internal/testsupport"
)

func TestFindWithoutArtist(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "A.mp3"), testsupport.MP3{Title: "Lonely", Seconds: 1})
	testsupport.WriteMP3(t, f.path("F00", "B.mp3"), testsupport.MP3{Title: "Paired", Artist: "Someone", Seconds: 1})
	testsupport.WriteMP3(t, f.path("F00", "C.mp3"), testsupport.MP3{NoTag: true, Seconds: 1})
	testsupport.WriteMP3(t, f.path("F00", "D.mp3"), testsupport.MP3{Title: "ÄÖÜ", Seconds: 1})
	testsupport.WriteFile(t, f.path("F01", "Untagged.wav"), []byte("RIFF"))

	result, err := f.orchestrator().FindWithoutArtist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 1, result.Skipped)

	text := readText(t, result.ReportPath)
	assert.Contains(t, text, "Songs Without Artist\n")
	assert.Contains(t, text, "Title: Lonely\nPath: "+f.path("F00", "A.mp3")+"\n")
	assert.NotContains(t, text, "Paired")
	assert.NotContains(t, text, "Untagged")
	assert.NotContains(t, text, "ÄÖÜ")
	assert.Contains(t, f.buf.String(), "Found 1 songs without artist")
}

func TestFindWithoutArtistReadsOlderID3Versions(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "WXYZ.mp3"), testsupport.MP3{Title: "Old iTunes", Seconds: 1, Version: testsupport.ID3v22})
	testsupport.WriteMP3(t, f.path("F00", "ABCD.mp3"), testsupport.MP3{Title: "Ripped", Seconds: 1, Version: testsupport.ID3v1})

	result, err := f.orchestrator().FindWithoutArtist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 0, result.Skipped)
	text := readText(t, result.ReportPath)
	assert.Contains(t, text, "Title: Old iTunes\n")
	assert.Contains(t, text, "Title: Ripped\n")
}
