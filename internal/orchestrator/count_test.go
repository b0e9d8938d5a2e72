package orchestrator

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscan/internal/testsupport"
)

func TestCountTalliesByExtension(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"F00/a.mp3", "F00/b.MP3", "F00/c.wav", "F00/._d.mp3", "F00/e.txt", "F01/f.m4a", "Other/g.mp3"} {
		testsupport.WriteFile(t, f.path(name), []byte("x"))
	}

	result, err := f.orchestrator().Count(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, FileTypeTally{".mp3": 2, ".wav": 1, ".m4a": 1}, result.ByType)
	assert.Equal(t, []string{".m4a", ".mp3", ".wav"}, result.ByType.Extensions())

	printed := f.buf.String()
	assert.Contains(t, printed, "Extension")
	assert.Contains(t, printed, ".m4a")
	assert.Contains(t, printed, "Total")
}

func TestCountEmptyRoot(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.ByType)
}

func TestCountTallySumsToTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)
	exts := []string{".mp3", ".m4a", ".wav", ".aiff", ".txt"}

	properties.Property("per-extension counts sum to the total", prop.ForAll(
		func(picks []int) bool {
			f := newFixture(t)
			for i, p := range picks {
				testsupport.WriteFile(t, f.path("F00", "file"+string(rune('a'+i%26))+string(rune('a'+i/26))+exts[p]), []byte("x"))
			}
			result, err := f.orchestrator().Count(context.Background())
			if err != nil {
				return false
			}
			sum := 0
			for _, n := range result.ByType {
				sum += n
			}
			return sum == result.Total
		},
		gen.SliceOfN(30, gen.IntRange(0, len(exts)-1)),
	))

	properties.TestingRun(t)
}
