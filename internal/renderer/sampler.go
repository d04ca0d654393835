package renderer

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/source"
	"github.com/ivlev/storyboard/internal/storyboard"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Draw is one visible sprite within a frame.
type Draw struct {
	Sprite  int                   `yaml:"sprite"` // Index into the sampled slice
	Path    string                `yaml:"path"`
	Texture source.Handle         `yaml:"texture"`
	Layer   string                `yaml:"layer"`
	Origin  string                `yaml:"origin"`
	ZOrder  int                   `yaml:"z"`
	State   animation.VisualState `yaml:",inline"`
	Color   string                `yaml:"color"`
}

// Frame is the draw list at one moment, back to front.
type Frame struct {
	Time  int    `yaml:"time"`
	Draws []Draw `yaml:"draws"`
}

// Timeline returns the union of the sprites' active windows.
func Timeline(sprites []*storyboard.Sprite) animation.Window {
	if len(sprites) == 0 {
		return animation.Window{}
	}
	w := animation.Window{Start: math.MaxInt, End: math.MinInt}
	for _, s := range sprites {
		sw := s.Anim.ActiveWindow()
		w.Start = min(w.Start, sw.Start)
		w.End = max(w.End, sw.End)
	}
	return w
}

// Frames returns the frame times covering window at fps, starting at
// window.Start. Times are rounded to whole milliseconds.
func Frames(window animation.Window, fps int) []int {
	if fps <= 0 || window.End < window.Start {
		return nil
	}
	step := 1000 / float64(fps)
	n := (window.End-window.Start)*fps/1000 + 1

	times := make([]int, 0, n)
	for i := 0; i < n; i++ {
		t := window.Start + int(math.Round(float64(i)*step))
		if t > window.End {
			break
		}
		times = append(times, t)
	}
	return times
}

// Sample evaluates every sprite at every time. Sprites are spread over at
// most workers goroutines, each sprite owned by exactly one of them, so
// recording must be finished before Sample is called.
func Sample(ctx context.Context, sprites []*storyboard.Sprite, times []int, scaleFactor float64, workers int) ([]Frame, error) {
	if workers <= 0 {
		workers = 1
	}

	states := make([][]animation.VisualState, len(sprites))
	active := make([][]bool, len(sprites))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, s := range sprites {
		g.Go(func() error {
			st := buffers.Get(len(times))
			act := make([]bool, len(times))
			for j, t := range times {
				if j%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				act[j] = s.IsActiveAt(t)
				if act[j] {
					st[j] = s.State(t, scaleFactor)
				}
			}
			states[i] = st
			active[i] = act
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sampling interrupted: %w", err)
	}

	order := make([]int, len(sprites))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sprites[order[a]].ZOrder < sprites[order[b]].ZOrder
	})

	frames := make([]Frame, len(times))
	for j, t := range times {
		frames[j].Time = t
		for _, i := range order {
			if !active[i][j] || states[i][j].Hidden {
				continue
			}
			s := sprites[i]
			frames[j].Draws = append(frames[j].Draws, Draw{
				Sprite:  i,
				Path:    s.Path,
				Texture: s.Texture,
				Layer:   s.Layer,
				Origin:  s.Origin.String(),
				ZOrder:  s.ZOrder,
				State:   states[i][j],
				Color:   states[i][j].Color.Hex(),
			})
		}
	}

	for _, st := range states {
		buffers.Put(st)
	}
	return frames, nil
}

// Stats summarizes a sampled timeline.
type Stats struct {
	Frames   int
	Draws    int
	MaxDraws int
	Additive int
}

// Summarize counts draws across frames.
func Summarize(frames []Frame) Stats {
	st := Stats{Frames: len(frames)}
	for _, f := range frames {
		st.Draws += len(f.Draws)
		st.MaxDraws = max(st.MaxDraws, len(f.Draws))
		for _, d := range f.Draws {
			if d.State.Blend == animation.BlendAdditive {
				st.Additive++
			}
		}
	}
	return st
}

// Dump writes the frames as a YAML document.
func Dump(w io.Writer, frames []Frame) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(frames); err != nil {
		return err
	}
	return enc.Close()
}

// DumpFile writes the frames to a YAML file.
func DumpFile(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Dump(f, frames); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
