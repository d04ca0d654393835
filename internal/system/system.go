package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

var (
	scriptExtensions = []string{".osb", ".osu", ".sb", ".txt"}
	audioExtensions  = []string{".wav"}
)

// FindLatestScript returns the most recently modified storyboard script in dir.
func FindLatestScript(dir string) (string, error) {
	path, err := findLatest(dir, scriptExtensions)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("no storyboard scripts found in %s", dir)
	}
	return path, nil
}

// FindLatestAudio returns the most recently modified audio file in dir.
func FindLatestAudio(dir string) (string, error) {
	path, err := findLatest(dir, audioExtensions)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("no audio files found in %s", dir)
	}
	return path, nil
}

func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// LogicalCPUs reports the number of logical CPUs, falling back to the Go
// runtime's view when the host cannot be queried.
func LogicalCPUs() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// ProcessStats is a resource snapshot of the running process.
type ProcessStats struct {
	RSS        uint64  // Resident set size, bytes
	CPUPercent float64 // Since process start
	Threads    int32
	Goroutines int
}

// CurrentProcessStats samples the running process.
func CurrentProcessStats() (ProcessStats, error) {
	stats := ProcessStats{Goroutines: runtime.NumGoroutine()}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, fmt.Errorf("failed to inspect process: %w", err)
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("failed to read memory info: %w", err)
	}
	stats.RSS = mem.RSS

	if pct, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = pct
	}
	if n, err := p.NumThreads(); err == nil {
		stats.Threads = n
	}
	return stats, nil
}

// String formats the snapshot for the performance report.
func (s ProcessStats) String() string {
	return fmt.Sprintf("RSS: %.1f MiB | CPU: %.1f%% | Threads: %d | Goroutines: %d",
		float64(s.RSS)/(1<<20), s.CPUPercent, s.Threads, s.Goroutines)
}
