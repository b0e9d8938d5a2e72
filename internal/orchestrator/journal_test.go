package orchestrator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscan/internal/audit"
	"podscan/internal/testsupport"
)

func TestJournalListsBackupRuns(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteFile(t, f.path("F00", "song.mp3"), []byte("first"))
	testsupport.WriteFile(t, f.path("F01", "song.mp3"), []byte("second"))

	o := f.orchestrator()
	_, err := o.Backup(context.Background(), CopyOptions{})
	require.NoError(t, err)
	_, err = o.Backup(context.Background(), CopyOptions{})
	require.NoError(t, err)
	f.buf.Reset()

	result, err := o.Journal(JournalOptions{Origin: "song_1.mp3"})
	require.NoError(t, err)

	require.Len(t, result.Runs, 2)
	for _, run := range result.Runs {
		assert.Equal(t, audit.RunStatusCompleted, run.Status)
		assert.Equal(t, 2, run.Summary.Copied)
	}
	assert.Equal(t, f.path("F01", "song.mp3"), result.Source)

	printed := f.buf.String()
	assert.Contains(t, printed, "Operation")
	assert.Contains(t, printed, "COMPLETED")
	assert.Contains(t, printed, "song_1.mp3 was copied from "+f.path("F01", "song.mp3"))
}

func TestJournalWithoutRuns(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(t.TempDir(), "empty")

	result, err := f.orchestrator().Journal(JournalOptions{DestDir: dest, Origin: "nothing.mp3"})
	require.NoError(t, err)

	assert.Empty(t, result.Runs)
	assert.Empty(t, result.Source)
	assert.Contains(t, f.buf.String(), "No copy runs recorded in "+dest)
	assert.Contains(t, f.buf.String(), "No copy of nothing.mp3 recorded")
}
