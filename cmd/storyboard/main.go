package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/director"
	"github.com/ivlev/storyboard/internal/engine"
	"github.com/ivlev/storyboard/internal/system"
)

var buildVersion = "dev"

func main() {
	// Создаем нужные директории, если их нет
	dirs := []string{"input/scripts", "input/audio", "input/scenarios", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	opts := newOptions(flag.CommandLine)
	flag.Parse()

	cfg := config.Default()
	cfg.Workers = system.LogicalCPUs()
	if opts.config != "" {
		loaded, err := config.Load(opts.config)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Настройки: %s\n", opts.config)
	}
	cfg.BuildVersion = buildVersion

	if opts.newScenario != "" {
		outputPath := director.GenerateScenarioPath("input/scenarios")
		if err := director.WriteScenario(director.Template(opts.newScenario), outputPath); err != nil {
			log.Fatalf("[-] Ошибка записи сценария: %v", err)
		}
		fmt.Printf("[+++] Успех! Сценарий сохранен: %s\n", outputPath)
		return
	}

	// Флаги имеют приоритет над файлом настроек
	opts.apply(cfg, flag.CommandLine)

	if cfg.ScriptPath == "" {
		latest, err := system.FindLatestScript("input/scripts")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите скрипт в input/scripts/", err)
		}
		cfg.ScriptPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.ScriptPath)
	}

	if cfg.AudioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err == nil {
			cfg.AudioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", cfg.AudioPath)
		}
	}

	if cfg.ExportPath == "" && !opts.noExport {
		baseName := filepath.Base(cfg.ScriptPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.ExportPath = filepath.Join("output", fmt.Sprintf("%s_%s.osb", cleanName, timestamp))
	}
	if opts.noExport {
		cfg.ExportPath = ""
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewProject(cfg, nil)
	if _, err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Спрайтов: %d\n", len(project.Sprites()))
}

type options struct {
	config, input, export, dump, scenario, newScenario string
	textures, audio, benchmarkLog                      string
	noExport, strict, audioSync, stats                 bool
	width, height, fps, workers                        int
	scale                                              float64
}

func newOptions(fs *flag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.config, "config", "", "YAML-файл настроек (флаги переопределяют значения из него)")
	fs.StringVar(&o.input, "input", "", "Путь к скрипту или папке со скриптами (по умолчанию: самый свежий файл в input/scripts/)")
	fs.StringVar(&o.export, "export", "", "Путь для экспорта скрипта (если пусто, генерируется автоматически в output/)")
	fs.BoolVar(&o.noExport, "no-export", false, "Не экспортировать скрипт")
	fs.StringVar(&o.dump, "dump", "", "YAML-файл с покадровой выборкой состояний")
	fs.StringVar(&o.scenario, "scenario", "", "YAML-сценарий или папка со сценариями для добавления спрайтов")
	fs.StringVar(&o.newScenario, "new-scenario", "", "Создать шаблон сценария для указанной текстуры и выйти")
	fs.StringVar(&o.textures, "textures", "", "Папка с текстурами (пусто: текстуры не проверяются)")
	fs.BoolVar(&o.strict, "strict", false, "Отбрасывать спрайты с нечитаемыми текстурами")
	fs.StringVar(&o.audio, "audio", "", "Путь к WAV (по умолчанию: самый свежий файл в input/audio/)")
	fs.BoolVar(&o.audioSync, "audio-sync", false, "Растянуть выборку кадров на длительность аудио")
	fs.IntVar(&o.width, "width", 0, "Ширина холста (по умолчанию 854)")
	fs.IntVar(&o.height, "height", 0, "Высота холста (по умолчанию 480)")
	fs.Float64Var(&o.scale, "scale", 0, "Масштаб отображения")
	fs.IntVar(&o.fps, "fps", 0, "FPS выборки (по умолчанию 30)")
	fs.IntVar(&o.workers, "workers", 0, "Потоки")
	fs.BoolVar(&o.stats, "stats", false, "Показать отчет о производительности")
	fs.StringVar(&o.benchmarkLog, "benchmark-log", "", "Дописывать отчет в файл")
	return o
}

// apply copies the flags given on the command line into cfg. Flags left at
// their defaults keep the values loaded from the config file.
func (o *options) apply(cfg *config.Config, fs *flag.FlagSet) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	setString(&cfg.ScriptPath, o.input)
	setString(&cfg.ExportPath, o.export)
	setString(&cfg.DumpPath, o.dump)
	setString(&cfg.ScenarioPath, o.scenario)
	setString(&cfg.TextureDir, o.textures)
	setString(&cfg.AudioPath, o.audio)
	setString(&cfg.BenchmarkLog, o.benchmarkLog)
	setInt(&cfg.Width, o.width)
	setInt(&cfg.Height, o.height)
	setInt(&cfg.FPS, o.fps)
	setInt(&cfg.Workers, o.workers)
	if o.scale > 0 {
		cfg.ScaleFactor = o.scale
	}
	if set["strict"] {
		cfg.Strict = o.strict
	}
	if set["stats"] {
		cfg.ShowStats = o.stats
	}
	if set["audio-sync"] {
		cfg.AudioSync = o.audioSync
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
