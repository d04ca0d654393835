package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ScriptPath   string `yaml:"script"`
	ExportPath   string `yaml:"export"`
	DumpPath     string `yaml:"dump"`
	ScenarioPath string `yaml:"scenario"`
	TextureDir   string `yaml:"texture_dir"`
	AudioPath    string `yaml:"audio"`
	// AudioSync stretches the sampled timeline to the length of the audio.
	AudioSync   bool    `yaml:"audio_sync"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	ScaleFactor float64 `yaml:"scale_factor"`
	FPS         int     `yaml:"fps"`
	Workers     int     `yaml:"workers"`
	// Strict rejects sprites whose texture cannot be read from TextureDir.
	Strict       bool   `yaml:"strict"`
	ShowStats    bool   `yaml:"stats"`
	BenchmarkLog string `yaml:"benchmark_log"`
	BuildVersion string `yaml:"-"`
}

// Default returns the settings of the 854x480 authoring canvas.
func Default() *Config {
	return &Config{
		Width:       854,
		Height:      480,
		ScaleFactor: 1,
		FPS:         30,
		Workers:     runtime.NumCPU(),
	}
}

// Load reads a YAML config on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would break coordinate conversion or sampling.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.ScaleFactor <= 0 {
		c.ScaleFactor = 1
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}
