package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscan/internal/config"
	"podscan/internal/testsupport"
)

type cliTestEnv struct {
	root    string
	reports string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "xdg"))
	t.Setenv(config.EnvMusicRoot, "")
	t.Setenv(config.EnvLogLevel, "")

	env := &cliTestEnv{
		root:    filepath.Join(base, "Music"),
		reports: filepath.Join(base, "reports"),
	}
	t.Setenv(config.EnvOutputDir, env.reports)

	testsupport.WriteMP3(t, filepath.Join(env.root, "F00", "A.mp3"), testsupport.MP3{Title: "Hello", Seconds: 125})
	testsupport.WriteMP3(t, filepath.Join(env.root, "F00", "B.mp3"), testsupport.MP3{Artist: "Nobody", Seconds: 1})
	return env
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestExportCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, "--root", env.root, "--log-level", "error", "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Total files: 2")
	requireContains(t, out, "Exported: 1")
	requireContains(t, out, "Empty titles: 1")
	requireContains(t, out, "Total duration: 0 hours (02:05)")

	songs, err := os.ReadFile(filepath.Join(env.reports, "songs_list_clean.txt"))
	if err != nil {
		t.Fatalf("read song list: %v", err)
	}
	requireContains(t, string(songs), "Hello [02:05]")
}

func TestExportCommandOutputFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	songList := filepath.Join(t.TempDir(), "mine.txt")

	_, _, err := runCLI(t, "--root", env.root, "export", "--output", songList, "--problems", "bad.txt")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(songList); err != nil {
		t.Errorf("song list not written to --output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.reports, "bad.txt")); err != nil {
		t.Errorf("relative --problems should resolve against the output dir: %v", err)
	}
}

func TestMissingRootFails(t *testing.T) {
	setupCLITestEnv(t)

	_, _, err := runCLI(t, "--root", filepath.Join(t.TempDir(), "nope"), "count")
	if err == nil {
		t.Fatal("expected an error for a missing music root")
	}
	requireContains(t, err.Error(), "source path inaccessible")
}

func TestMissingRootSetting(t *testing.T) {
	setupCLITestEnv(t)

	_, _, err := runCLI(t, "count")
	if err == nil {
		t.Fatal("expected a validation error without a music root")
	}
	requireContains(t, err.Error(), "music_root")
}

func TestCountCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, "--root", env.root, "count")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	requireContains(t, out, ".mp3")
	requireContains(t, out, "Total")
}

func TestCountHelpListsTypes(t *testing.T) {
	out, _, err := runCLI(t, "count", "--help")
	if err != nil {
		t.Fatalf("count --help: %v", err)
	}
	requireContains(t, out, "Counted types: .aac .aif .aiff .alac .m4a .m4p .mp3 .wav")
}

func TestSearchCommandDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	dest := filepath.Join(t.TempDir(), "found")

	out, _, err := runCLI(t, "--root", env.root, "search", "Hell", "--dest", dest, "--dry-run")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "Would copy 1 files")
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("dry run created %s", dest)
	}
}

func TestSearchCommandRequiresKeyword(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, "--root", env.root, "search"); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestBackupCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dest := filepath.Join(t.TempDir(), "backup")

	out, _, err := runCLI(t, "--root", env.root, "backup", "--dest", dest)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	requireContains(t, out, "Backup complete!")
	for _, name := range []string{"A.mp3", "B.mp3"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing backup copy %s: %v", name, err)
		}
	}
}

func TestJournalCommandAfterBackup(t *testing.T) {
	env := setupCLITestEnv(t)
	dest := filepath.Join(t.TempDir(), "backup")

	if _, _, err := runCLI(t, "--root", env.root, "backup", "--dest", dest); err != nil {
		t.Fatalf("backup: %v", err)
	}
	out, _, err := runCLI(t, "--root", env.root, "journal", "--dest", dest, "--origin", "A.mp3")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	requireContains(t, out, "backup")
	requireContains(t, out, "COMPLETED")
	requireContains(t, out, "A.mp3 was copied from "+filepath.Join(env.root, "F00", "A.mp3"))
}

func TestNoArtistCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, "--root", env.root, "no-artist")
	if err != nil {
		t.Fatalf("no-artist: %v", err)
	}
	requireContains(t, out, "Found 1 songs without artist")
	requireContains(t, out, filepath.Join(env.reports, "songs_without_artist.txt"))
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, "--config", target, "--root", env.root, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Music root: "+env.root)
}

func TestConfigValidateReportsErrors(t *testing.T) {
	setupCLITestEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("music_root = \"/x\"\n[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "--config", path, "config", "validate")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, out, "error: logging.level")
	requireContains(t, out, "warning: music_root")
}
