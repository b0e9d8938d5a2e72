package organizer

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	nonExistent := filepath.Join(tempDir, "nonexistent.mp3")
	if FileExists(nonExistent) {
		t.Error("FileExists returned true for non-existent file")
	}

	existingFile := filepath.Join(tempDir, "existing.mp3")
	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if !FileExists(existingFile) {
		t.Error("FileExists returned false for existing file")
	}
}

func TestUniqueName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		input    string
		want     string
	}{
		{"no conflict", nil, "song.mp3", "song.mp3"},
		{"first collision", []string{"song.mp3"}, "song.mp3", "song_1.mp3"},
		{"probes past taken suffixes", []string{"song.mp3", "song_1.mp3", "song_2.mp3"}, "song.mp3", "song_3.mp3"},
		{"gap is reused", []string{"song.mp3", "song_2.mp3"}, "song.mp3", "song_1.mp3"},
		{"no extension", []string{"README"}, "README", "README_1"},
		{"dots in name", []string{"a.b.m4a"}, "a.b.m4a", "a.b_1.m4a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.existing {
				if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			if got := UniqueName(dir, tt.input); got != tt.want {
				t.Errorf("UniqueName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUniqueNameNeverReturnsExisting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("UniqueName returns a name that does not exist yet", prop.ForAll(
		func(base string, taken int) bool {
			dir := t.TempDir()
			name := base + ".mp3"
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
				return false
			}
			for i := 1; i <= taken; i++ {
				p := filepath.Join(dir, base+"_"+strconv.Itoa(i)+".mp3")
				if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
					return false
				}
			}

			got := UniqueName(dir, name)
			return got == base+"_"+strconv.Itoa(taken+1)+".mp3" && !FileExists(filepath.Join(dir, got))
		},
		gen.Identifier(),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}

func TestUniqueNameWithPlannedNames(t *testing.T) {
	planned := map[string]bool{"song.mp3": true, "song_1.mp3": true}

	got := UniqueNameWith("song.mp3", func(name string) bool { return planned[name] })
	if got != "song_2.mp3" {
		t.Errorf("UniqueNameWith = %q, want song_2.mp3", got)
	}
	if got := UniqueNameWith("other.m4a", func(name string) bool { return planned[name] }); got != "other.m4a" {
		t.Errorf("UniqueNameWith = %q, want other.m4a", got)
	}
}
