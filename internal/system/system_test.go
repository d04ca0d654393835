package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFindLatestScript(t *testing.T) {
	dir := t.TempDir()

	files := []string{"old.osb", "newer.OSB", "ignored.png", "song.wav"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte("x"), 0644)
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(path, modTime, modTime)
	}

	latest, err := FindLatestScript(dir)
	if err != nil {
		t.Fatalf("FindLatestScript failed: %v", err)
	}
	if filepath.Base(latest) != "newer.OSB" {
		t.Errorf("Expected newer.OSB, got %s", latest)
	}

	audio, err := FindLatestAudio(dir)
	if err != nil || filepath.Base(audio) != "song.wav" {
		t.Errorf("FindLatestAudio = %s, %v", audio, err)
	}
}

func TestFindLatestScriptEmpty(t *testing.T) {
	if _, err := FindLatestScript(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without scripts")
	}
	if _, err := FindLatestScript(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestProcessStats(t *testing.T) {
	if n := LogicalCPUs(); n < 1 {
		t.Errorf("LogicalCPUs = %d", n)
	}

	stats, err := CurrentProcessStats()
	if err != nil {
		t.Skipf("process stats unavailable: %v", err)
	}
	if stats.RSS == 0 || stats.Goroutines < 1 {
		t.Errorf("Implausible stats: %+v", stats)
	}
	if !strings.Contains(stats.String(), "RSS:") {
		t.Errorf("String() = %q", stats.String())
	}
	t.Logf("%s", stats)
}
