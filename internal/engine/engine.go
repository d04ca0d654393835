package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/clock"
	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/director"
	"github.com/ivlev/storyboard/internal/renderer"
	"github.com/ivlev/storyboard/internal/source"
	"github.com/ivlev/storyboard/internal/storyboard"
	"github.com/ivlev/storyboard/internal/system"
)

// ErrNoScript is returned when Run has nothing to parse.
var ErrNoScript = errors.New("no storyboard script")

type Project struct {
	Config   *config.Config
	Resolver source.Resolver
	Logger   *log.Logger
	Out      io.Writer

	canvas  storyboard.Canvas
	sprites []*storyboard.Sprite
}

// Report collects what one Run did.
type Report struct {
	Script    string
	Sprites   int
	Scenario  int
	Lines     int
	Skipped   int
	Window    animation.Window
	Frames    renderer.Stats
	Parse     time.Duration
	Sample    time.Duration
	Total     time.Duration
	Process   system.ProcessStats
	HasSample bool
}

func NewProject(cfg *config.Config, resolver source.Resolver) *Project {
	return &Project{
		Config:   cfg,
		Resolver: resolver,
	}
}

// Sprites returns the sprites built by the last Run.
func (p *Project) Sprites() []*storyboard.Sprite {
	return p.sprites
}

func (p *Project) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

func (p *Project) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.writer(), format, args...)
}

// resolver picks the texture source: the injected one, a strict registry
// over TextureDir, or a lenient one that tolerates missing files.
func (p *Project) resolver() source.Resolver {
	if p.Resolver != nil {
		return p.Resolver
	}
	if p.Config.TextureDir == "" && !p.Config.Strict {
		return source.NewStatic()
	}
	reg := source.NewRegistry(p.Config.TextureDir)
	reg.Lenient = !p.Config.Strict
	return reg
}

// Run parses the script, merges an optional scenario, exports, samples and
// reports. Only sampling and the stages between steps honor ctx.
func (p *Project) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scriptPath, err := p.scriptPath()
	if err != nil {
		return nil, err
	}

	p.canvas = storyboard.NewCanvas(cfg.Width, cfg.Height)
	resolver := p.resolver()
	report := &Report{Script: scriptPath}

	fmt.Fprintln(p.writer(), "--- [PROJECT: STORYBOARD ENGINE] ---")
	p.printf("[*] Скрипт: %s\n", scriptPath)
	p.printf("[*] Холст: %dx%d @ %d FPS | Потоки: %d\n", cfg.Width, cfg.Height, cfg.FPS, cfg.Workers)
	fmt.Fprintln(p.writer(), "-----------------------------")

	// 1. Разбор скрипта
	parseStart := time.Now()
	parser := storyboard.NewParser(p.canvas, resolver, p.logger())
	res, err := parser.ParseFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения скрипта: %w", err)
	}
	report.Parse = time.Since(parseStart)
	report.Lines = res.Lines
	report.Skipped = res.Skipped
	p.sprites = res.Sprites
	p.printf("[*] Спрайтов: %d | Строк: %d | Пропущено: %d\n", len(res.Sprites), res.Lines, res.Skipped)

	// 2. Сценарий
	if cfg.ScenarioPath != "" {
		n, err := p.mergeScenario(resolver)
		if err != nil {
			return nil, err
		}
		report.Scenario = n
	}
	report.Sprites = len(p.sprites)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Экспорт
	if cfg.ExportPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.ExportPath), 0755); err != nil {
			return nil, err
		}
		exporter := storyboard.NewExporter(p.canvas)
		if err := exporter.ExportFile(cfg.ExportPath, p.sprites, nil); err != nil {
			return nil, fmt.Errorf("ошибка экспорта: %w", err)
		}
		p.printf("[+++] Скрипт сохранен: %s\n", cfg.ExportPath)
	}

	// 4. Выборка кадров
	if cfg.DumpPath != "" || cfg.ShowStats {
		sampleStart := time.Now()
		report.Window = p.timeline()
		times := renderer.Frames(report.Window, cfg.FPS)

		frames, err := renderer.Sample(ctx, p.sprites, times, cfg.ScaleFactor, cfg.Workers)
		if err != nil {
			return nil, err
		}
		report.Sample = time.Since(sampleStart)
		report.Frames = renderer.Summarize(frames)
		report.HasSample = true

		if cfg.DumpPath != "" {
			if err := renderer.DumpFile(cfg.DumpPath, frames); err != nil {
				return nil, fmt.Errorf("ошибка записи кадров: %w", err)
			}
			p.printf("[+++] Кадры сохранены: %s (%d)\n", cfg.DumpPath, len(frames))
		}
	}

	report.Total = time.Since(startTime)

	if cfg.ShowStats {
		stats, err := system.CurrentProcessStats()
		if err != nil {
			p.logger().Printf("[!] Не удалось получить статистику процесса: %v", err)
		}
		report.Process = stats
		p.writeReport(report)
	}

	return report, nil
}

func (p *Project) writer() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// scriptPath resolves a directory to its newest script.
func (p *Project) scriptPath() (string, error) {
	path := p.Config.ScriptPath
	if path == "" {
		return "", ErrNoScript
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		// Missing files surface as ErrUnreadable from the parser.
		return path, nil
	}
	latest, err := system.FindLatestScript(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoScript, err)
	}
	p.printf("[*] Выбран файл: %s\n", latest)
	return latest, nil
}

// mergeScenario builds the scenario's sprites and stacks them above the
// parsed ones.
func (p *Project) mergeScenario(resolver source.Resolver) (int, error) {
	path := p.Config.ScenarioPath
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		latest, err := director.FindLatestScenario(path)
		if err != nil {
			return 0, err
		}
		path = latest
	}

	scenario, err := director.ReadScenario(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения сценария: %w", err)
	}
	built, err := director.NewDirector(p.canvas, resolver).Build(scenario)
	if err != nil {
		return 0, fmt.Errorf("ошибка сценария %s: %w", path, err)
	}

	base := len(p.sprites)
	for i, s := range built {
		s.ZOrder = base + i
	}
	p.sprites = append(p.sprites, built...)
	p.printf("[*] Используется сценарий: %s (+%d спрайтов)\n", path, len(built))
	return len(built), nil
}

// timeline is the sampling window: the sprites' union, or the whole song
// when AudioSync is on and the audio can be decoded.
func (p *Project) timeline() animation.Window {
	window := renderer.Timeline(p.sprites)
	cfg := p.Config
	if cfg.AudioPath == "" || !cfg.AudioSync {
		return window
	}

	audio, err := clock.OpenWAV(cfg.AudioPath)
	if err != nil {
		p.logger().Printf("[!] Не удалось получить длительность аудио: %v", err)
		return window
	}
	defer audio.Close()

	length := audio.LengthMS()
	p.printf("[*] Длительность установлена по аудио: %.2fs\n", float64(length)/1000)
	return animation.Window{Start: 0, End: length}
}

// Snapshot samples every sprite at the clock's current time.
func (p *Project) Snapshot(ctx context.Context, src clock.Source) (renderer.Frame, error) {
	frames, err := renderer.Sample(ctx, p.sprites, []int{src.NowMS()}, p.Config.ScaleFactor, p.Config.Workers)
	if err != nil {
		return renderer.Frame{}, err
	}
	return frames[0], nil
}

func (p *Project) writeReport(r *Report) {
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.3fs\n"+
			"Parsing: %.3fs\n"+
			"Sampling: %.3fs\n"+
			"Sprites: %d (scenario: %d)\n"+
			"Frames: %d | Draws: %d | Peak: %d | Additive: %d\n"+
			"%s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, r.Total.Seconds(), r.Parse.Seconds(), r.Sample.Seconds(),
		r.Sprites, r.Scenario,
		r.Frames.Frames, r.Frames.Draws, r.Frames.MaxDraws, r.Frames.Additive,
		r.Process,
	)
	fmt.Fprint(p.writer(), report)

	if p.Config.BenchmarkLog == "" {
		return
	}

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Script: %s | Sprites: %d | Frames: %d | Total: %.3fs | Parse: %.3fs | Sample: %.3fs | RSS: %d\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(r.Script),
		r.Sprites,
		r.Frames.Frames,
		r.Total.Seconds(),
		r.Parse.Seconds(),
		r.Sample.Seconds(),
		r.Process.RSS,
	)

	f, err := os.OpenFile(p.Config.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		p.logger().Printf("[!] Не удалось записать %s: %v", p.Config.BenchmarkLog, err)
	}
}
