package renderer

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/easing"
	"github.com/ivlev/storyboard/internal/storyboard"
	"github.com/ivlev/storyboard/internal/tween"
)

func testSprites() []*storyboard.Sprite {
	a := storyboard.NewSprite("Background", storyboard.Centre, "bg.png", 0, tween.Point{})
	a.Anim.AddScalar(animation.Fade, easing.Linear, 0, 1000, 1, 1)
	a.ZOrder = 1

	b := storyboard.NewSprite("Foreground", storyboard.TopLeft, "star.png", 1, tween.Point{X: 10, Y: 10})
	b.Anim.AddScalar(animation.Fade, easing.Linear, 500, 1500, 1, 0)
	b.Anim.AddAdditive(easing.Linear, 500, 500)
	b.ZOrder = 0

	return []*storyboard.Sprite{a, b}
}

func TestFrames(t *testing.T) {
	tests := []struct {
		name   string
		window animation.Window
		fps    int
		want   []int
	}{
		{"ten fps", animation.Window{Start: 0, End: 300}, 10, []int{0, 100, 200, 300}},
		{"thirty fps", animation.Window{Start: 1000, End: 1100}, 30, []int{1000, 1033, 1067, 1100}},
		{"single point", animation.Window{Start: 50, End: 50}, 60, []int{50}},
		{"no fps", animation.Window{Start: 0, End: 100}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Frames(tt.window, tt.fps)
			if len(got) != len(tt.want) {
				t.Fatalf("Frames = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Frames = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestTimeline(t *testing.T) {
	w := Timeline(testSprites())
	if w.Start != 0 || w.End != 1500 {
		t.Errorf("Timeline = %+v, want [0,1500]", w)
	}
	if w := Timeline(nil); w != (animation.Window{}) {
		t.Errorf("empty Timeline = %+v", w)
	}
}

func TestSample(t *testing.T) {
	sprites := testSprites()
	times := []int{250, 750, 1250, 1500}

	frames, err := Sample(context.Background(), sprites, times, 1, 4)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(frames) != len(times) {
		t.Fatalf("Expected %d frames, got %d", len(times), len(frames))
	}

	wantPaths := [][]string{
		{"bg.png"},
		{"star.png", "bg.png"},
		{"star.png"},
		{},
	}
	for i, f := range frames {
		var got []string
		for _, d := range f.Draws {
			got = append(got, d.Path)
		}
		t.Logf("t=%d draws=%v", f.Time, got)
		if strings.Join(got, ",") != strings.Join(wantPaths[i], ",") {
			t.Errorf("Frame %d at %dms: draws %v, want %v", i, f.Time, got, wantPaths[i])
		}
	}

	star := frames[1].Draws[0]
	if star.State.Blend != animation.BlendAdditive || star.Sprite != 1 || star.Origin != "TopLeft" {
		t.Errorf("Unexpected draw: %+v", star)
	}
	if star.Color != "#ffffff" {
		t.Errorf("Color = %s", star.Color)
	}

	st := Summarize(frames)
	if st.Frames != 4 || st.Draws != 4 || st.MaxDraws != 2 || st.Additive != 2 {
		t.Errorf("Summarize = %+v", st)
	}
}

func TestSampleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sample(ctx, testSprites(), []int{0, 100}, 1, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestDump(t *testing.T) {
	frames, err := Sample(context.Background(), testSprites(), []int{750}, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Dump(&buf, frames); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"time: 750", "path: star.png", "blend: additive", "alpha: 0.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump output missing %q:\n%s", want, out)
		}
	}

	if err := DumpFile(filepath.Join(t.TempDir(), "frames.yaml"), frames); err != nil {
		t.Errorf("DumpFile failed: %v", err)
	}
}

func TestStatePool(t *testing.T) {
	buf := buffers.Get(7)
	if len(buf) != 7 {
		t.Fatalf("len = %d, want 7", len(buf))
	}
	buffers.Put(buf)
	buffers.Put(nil)

	if again := buffers.Get(7); len(again) != 7 {
		t.Errorf("len after reuse = %d", len(again))
	}
}
