package engine

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/ivlev/storyboard/internal/clock"
	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/director"
	"github.com/ivlev/storyboard/internal/storyboard"
)

const script = `[Events]
// Storyboard Layer 0 (Background)
Sprite,Background,Centre,"bg.jpg",320,240
 F,0,0,2000,1,1
Sprite,Foreground,TopLeft,"star.png",100,50
 F,0,0,1000,0,1
 P,0,500,500,A
 L,1000,2
  S,0,0,100,1,2
Unknown,1,2,3
`

func newProject(t *testing.T, cfg *config.Config) (*Project, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	p := NewProject(cfg, nil)
	p.Out = &out
	p.Logger = log.New(&out, "", 0)
	return p, &out
}

func writeScript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "song.osb")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	scenario := director.Template("logo.png")
	scenarioPath := filepath.Join(dir, "scenarios", "intro.yaml")
	os.MkdirAll(filepath.Dir(scenarioPath), 0755)
	if err := director.WriteScenario(scenario, scenarioPath); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.ScriptPath = dir
	cfg.ExportPath = filepath.Join(dir, "out", "export.osb")
	cfg.DumpPath = filepath.Join(dir, "frames.yaml")
	cfg.ScenarioPath = filepath.Dir(scenarioPath)
	cfg.FPS = 10
	cfg.Workers = 2
	cfg.ShowStats = true
	cfg.BenchmarkLog = filepath.Join(dir, "benchmark.log")
	cfg.BuildVersion = "test"
	writeScript(t, dir)

	p, out := newProject(t, cfg)
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v\n%s", err, out.String())
	}
	t.Logf("output:\n%s", out.String())

	if report.Sprites != 3 || report.Scenario != 1 {
		t.Errorf("Sprites = %d (scenario %d), want 3 (1)", report.Sprites, report.Scenario)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if report.Window.Start != 0 || report.Window.End != 3000 {
		t.Errorf("Window = %+v, want [0,3000]", report.Window)
	}
	if !report.HasSample || report.Frames.Frames != 31 {
		t.Errorf("Frames = %+v", report.Frames)
	}
	if p.Sprites()[2].ZOrder != 2 {
		t.Errorf("Scenario sprite not stacked on top: z=%d", p.Sprites()[2].ZOrder)
	}

	exported, err := storyboard.NewParser(storyboard.DefaultCanvas, nil, log.New(&bytes.Buffer{}, "", 0)).ParseFile(cfg.ExportPath)
	if err != nil {
		t.Fatalf("Export not readable: %v", err)
	}
	if len(exported.Sprites) != 3 || exported.Skipped != 0 {
		t.Errorf("Export re-parsed into %d sprites, %d skipped", len(exported.Sprites), exported.Skipped)
	}

	for _, path := range []string{cfg.DumpPath, cfg.BenchmarkLog} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s: %v", path, err)
		}
	}
	if !strings.Contains(out.String(), "PERFORMANCE REPORT") {
		t.Error("Report not printed")
	}

	var manual clock.Manual
	manual.Set(750)
	frame, err := p.Snapshot(context.Background(), &manual)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Time != 750 || len(frame.Draws) != 3 {
		t.Errorf("Snapshot = %d draws at %d", len(frame.Draws), frame.Time)
	}
}

func TestRunAudioSync(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "song.wav")

	f, err := os.Create(audioPath)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Silence(8000*4), format); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := config.Default()
	cfg.ScriptPath = writeScript(t, dir)
	cfg.AudioPath = audioPath
	cfg.AudioSync = true
	cfg.DumpPath = filepath.Join(dir, "frames.yaml")
	cfg.FPS = 1

	p, out := newProject(t, cfg)
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v\n%s", err, out.String())
	}
	if report.Window.Start != 0 || report.Window.End != 4000 {
		t.Errorf("Window = %+v, want the song's [0,4000]", report.Window)
	}
	if report.Frames.Frames != 5 {
		t.Errorf("Frames = %d, want 5", report.Frames.Frames)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("no script", func(t *testing.T) {
		p, _ := newProject(t, config.Default())
		if _, err := p.Run(context.Background()); !errors.Is(err, ErrNoScript) {
			t.Errorf("Expected ErrNoScript, got %v", err)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		cfg := config.Default()
		cfg.ScriptPath = t.TempDir()
		p, _ := newProject(t, cfg)
		if _, err := p.Run(context.Background()); !errors.Is(err, ErrNoScript) {
			t.Errorf("Expected ErrNoScript, got %v", err)
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		cfg := config.Default()
		cfg.ScriptPath = filepath.Join(t.TempDir(), "missing.osb")
		p, _ := newProject(t, cfg)
		if _, err := p.Run(context.Background()); !errors.Is(err, storyboard.ErrUnreadable) {
			t.Errorf("Expected ErrUnreadable, got %v", err)
		}
	})

	t.Run("bad scenario", func(t *testing.T) {
		dir := t.TempDir()
		cfg := config.Default()
		cfg.ScriptPath = writeScript(t, dir)
		cfg.ScenarioPath = filepath.Join(dir, "bad.yaml")
		os.WriteFile(cfg.ScenarioPath, []byte("sprites:\n  - keyframes: [{time: 0}]\n"), 0644)
		p, _ := newProject(t, cfg)
		if _, err := p.Run(context.Background()); !errors.Is(err, director.ErrScenario) {
			t.Errorf("Expected ErrScenario, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cfg := config.Default()
		cfg.ScriptPath = writeScript(t, t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p, _ := newProject(t, cfg)
		if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}
