package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscan/internal/audit"
	"podscan/internal/testsupport"
)

func TestSearchCopiesMatches(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "A.mp3"), testsupport.MP3{Title: "Hello World", Seconds: 1})
	testsupport.WriteMP3(t, f.path("F00", "B.mp3"), testsupport.MP3{Title: "hello lower", Seconds: 1})
	testsupport.WriteFile(t, f.path("F01", "Hello Again.wav"), []byte("RIFF"))

	result, err := f.orchestrator().Search(context.Background(), "Hello", CopyOptions{})
	require.NoError(t, err)

	require.True(t, result.Found())
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "Hello World", result.Matches[0].Title)
	assert.Equal(t, "Hello Again", result.Matches[1].Title)
	assert.FileExists(t, filepath.Join(f.cfg.Search.DestDir, "A.mp3"))
	assert.FileExists(t, filepath.Join(f.cfg.Search.DestDir, "Hello Again.wav"))
	assert.NoFileExists(t, filepath.Join(f.cfg.Search.DestDir, "B.mp3"))
	assert.Contains(t, f.buf.String(), "Found and copied 2 files")
}

func TestSearchNoMatchStillCreatesDestination(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "A.mp3"), testsupport.MP3{Title: "Hello", Seconds: 1})

	result, err := f.orchestrator().Search(context.Background(), "Goodbye", CopyOptions{})
	require.NoError(t, err)

	assert.False(t, result.Found())
	assert.DirExists(t, f.cfg.Search.DestDir)
	assert.Contains(t, f.buf.String(), `No file with a title containing "Goodbye"`)
}

func TestSearchCollisionKeepsBothCopies(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "song.mp3"), testsupport.MP3{Title: "Love one", Seconds: 1})
	testsupport.WriteMP3(t, f.path("F01", "song.mp3"), testsupport.MP3{Title: "Love two", Seconds: 2})

	result, err := f.orchestrator().Search(context.Background(), "Love", CopyOptions{})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, filepath.Join(f.cfg.Search.DestDir, "song.mp3"), result.Matches[0].DestinationPath)
	assert.Equal(t, filepath.Join(f.cfg.Search.DestDir, "song_1.mp3"), result.Matches[1].DestinationPath)
}

func TestSearchDryRunLeavesDestinationUntouched(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "song.mp3"), testsupport.MP3{Title: "Love one", Seconds: 1})
	testsupport.WriteMP3(t, f.path("F01", "song.mp3"), testsupport.MP3{Title: "Love two", Seconds: 1})
	dest := filepath.Join(t.TempDir(), "planned")

	result, err := f.orchestrator().Search(context.Background(), "Love", CopyOptions{DestDir: dest, DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, filepath.Join(dest, "song_1.mp3"), result.Matches[1].DestinationPath)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the destination")
	assert.Contains(t, f.buf.String(), "Would copy 2 files")
}

func TestSearchJournalsCopies(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "A.mp3"), testsupport.MP3{Title: "Hello", Seconds: 1})

	_, err := f.orchestrator().Search(context.Background(), "Hello", CopyOptions{})
	require.NoError(t, err)

	events, err := audit.ReadJournal(f.cfg.Search.DestDir)
	require.NoError(t, err)
	runs := audit.Runs(events)
	require.Len(t, runs, 1)
	assert.Equal(t, "search", runs[0].Operation)
	assert.Equal(t, 1, runs[0].Summary.Copied)
	origin, ok := audit.Origin(events, filepath.Join(f.cfg.Search.DestDir, "A.mp3"))
	require.True(t, ok)
	assert.Equal(t, f.path("F00", "A.mp3"), origin)
}

func TestSearchAgainSkipsEarlierCopies(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteMP3(t, f.path("F00", "A.mp3"), testsupport.MP3{Title: "Hello", Seconds: 1})
	testsupport.WriteMP3(t, f.path("F01", "B.mp3"), testsupport.MP3{Title: "Hello again", Seconds: 1})

	_, err := f.orchestrator().Search(context.Background(), "Hello", CopyOptions{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.cfg.Search.DestDir, "B.mp3")))
	f.buf.Reset()

	result, err := f.orchestrator().Search(context.Background(), "Hello", CopyOptions{})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, filepath.Join(f.cfg.Search.DestDir, "A.mp3"), result.Matches[0].DestinationPath)
	assert.Equal(t, filepath.Join(f.cfg.Search.DestDir, "B.mp3"), result.Matches[1].DestinationPath)
	assert.NoFileExists(t, filepath.Join(f.cfg.Search.DestDir, "A_1.mp3"))
	assert.Contains(t, f.buf.String(), "Already copied: Hello")
	assert.Contains(t, f.buf.String(), "Found and copied 1 files")
	assert.Contains(t, f.buf.String(), "1 files were already copied earlier")
}
