package director

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/easing"
	"github.com/ivlev/storyboard/internal/storyboard"
	"github.com/ivlev/storyboard/internal/tween"
)

func f(v float64) *float64 { return &v }

func TestDirectorBuild(t *testing.T) {
	director := NewDirector(storyboard.DefaultCanvas, nil)

	sprites, err := director.Build(Template("sb/logo.png"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sprites) != 1 {
		t.Fatalf("Expected 1 sprite, got %d", len(sprites))
	}

	s := sprites[0]
	moves := s.Anim.PointTweens(animation.Move)
	fades := s.Anim.ScalarTweens(animation.Fade)
	if len(moves) != 2 || len(fades) != 2 {
		t.Fatalf("Expected 2 move and 2 fade tweens, got %d and %d", len(moves), len(fades))
	}
	if n := len(s.Anim.ScalarTweens(animation.Scale)); n != 0 {
		t.Errorf("Scale was never keyed, got %d tweens", n)
	}

	if moves[0].From != (tween.Point{X: -227, Y: 0}) || moves[0].To != (tween.Point{}) {
		t.Errorf("Move not converted to engine space: %+v", moves[0])
	}
	if moves[0].Easing != easing.CubicOut || fades[1].Easing != easing.SineIn {
		t.Errorf("Wrong easings: %v, %v", moves[0].Easing, fades[1].Easing)
	}
	// The last keyframe carries the position forward.
	if moves[1].From != moves[1].To {
		t.Errorf("Unset position should hold: %+v", moves[1])
	}

	for _, tm := range []int{0, 500, 1000, 2000, 3000} {
		vs := s.State(tm, 1)
		t.Logf("t=%dms alpha=%.3f pos=(%.1f, %.1f)", tm, vs.Alpha, vs.Position.X, vs.Position.Y)
	}
	if got := s.State(1000, 1).Alpha; got != 1 {
		t.Errorf("Alpha at 1000 = %v, want 1", got)
	}
}

func TestDirectorLoop(t *testing.T) {
	sc := &Scenario{
		Sprites: []SpriteTrack{{
			Path: "dot.png",
			Loop: &Loop{Start: 2000, Count: 4},
			Keyframes: []Keyframe{
				{Time: 0, Scale: f(1)},
				{Time: 250, Scale: f(2)},
			},
		}},
	}

	sprites, err := NewDirector(storyboard.DefaultCanvas, nil).Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	m := sprites[0].Anim
	scales := m.ScalarTweens(animation.Scale)
	if len(scales) != 4 {
		t.Fatalf("Expected 4 looped tweens, got %d", len(scales))
	}
	if scales[3].Start != 2750 {
		t.Errorf("Last iteration starts at %d, want 2750", scales[3].Start)
	}
	if w := m.ActiveWindow(); w.Start != 2000 || w.End != 3000 {
		t.Errorf("Window = %+v", w)
	}
}

func TestDirectorLoopKeepsKeyframeOffsets(t *testing.T) {
	sc := &Scenario{
		Sprites: []SpriteTrack{{
			Path: "dot.png",
			Loop: &Loop{Start: 1000, Count: 2},
			Keyframes: []Keyframe{
				{Time: 0, Opacity: f(0)},
				{Time: 100, Opacity: f(1)},
				{Time: 300, Opacity: f(0.5)},
			},
		}},
	}

	sprites, err := NewDirector(storyboard.DefaultCanvas, nil).Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	m := sprites[0].Anim
	fades := m.ScalarTweens(animation.Fade)

	want := [][2]int{{1000, 1100}, {1100, 1300}, {1300, 1400}, {1400, 1600}}
	if len(fades) != len(want) {
		t.Fatalf("Expected %d tweens, got %d", len(want), len(fades))
	}
	for i, w := range want {
		if fades[i].Start != w[0] || fades[i].End != w[1] {
			t.Errorf("Tween %d spans [%d, %d], want [%d, %d]", i, fades[i].Start, fades[i].End, w[0], w[1])
		}
	}
	if a := m.Alpha(1200); math.Abs(a-0.75) > 1e-9 {
		t.Errorf("Alpha(1200) = %v, want 0.75", a)
	}
	if a := m.Alpha(1350); math.Abs(a-0.5) > 1e-9 {
		t.Errorf("Alpha(1350) = %v, want 0.5", a)
	}
	if m.Recording() {
		t.Error("Manager left in recording state")
	}

	sc.Sprites[0].Loop.Count = 0
	sprites, err = NewDirector(storyboard.DefaultCanvas, nil).Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	if n := sprites[0].Anim.TweenCount(); n != 0 {
		t.Errorf("Count 0 recorded %d tweens", n)
	}
}

func TestDirectorSingleKeyframeAndColor(t *testing.T) {
	sc := &Scenario{
		Canvas: Size{W: 640, H: 480},
		Sprites: []SpriteTrack{{
			Path:      "bg.jpg",
			Origin:    "TopLeft",
			Layer:     "Background",
			Keyframes: []Keyframe{{Time: 100, Color: "#ff8000", Rotation: f(math.Pi)}},
		}},
	}

	sprites, err := NewDirector(storyboard.DefaultCanvas, nil).Build(sc)
	if err != nil {
		t.Fatal(err)
	}
	s := sprites[0]
	if s.Origin != storyboard.TopLeft || s.Layer != "Background" {
		t.Errorf("Header not applied: %+v", s)
	}
	if s.Position != (tween.Point{X: -320, Y: 240}) {
		t.Errorf("Scenario canvas not used: %+v", s.Position)
	}

	colors := s.Anim.ColorTweens()
	if len(colors) != 1 || !colors[0].IsKeyframe() {
		t.Fatalf("Expected one color keyframe, got %+v", colors)
	}
	if colors[0].To.Hex() != "#ff8000" {
		t.Errorf("Color = %s", colors[0].To.Hex())
	}
	if n := len(s.Anim.ScalarTweens(animation.Rotate)); n != 1 {
		t.Errorf("Expected one rotation keyframe, got %d", n)
	}
}

func TestDirectorErrors(t *testing.T) {
	tests := []struct {
		name  string
		track SpriteTrack
	}{
		{"no path", SpriteTrack{Keyframes: []Keyframe{{Time: 0}}}},
		{"no keyframes", SpriteTrack{Path: "a.png"}},
		{"bad origin", SpriteTrack{Path: "a.png", Origin: "Middle", Keyframes: []Keyframe{{Time: 0}}}},
		{"bad easing", SpriteTrack{Path: "a.png", Keyframes: []Keyframe{{Time: 0, Easing: "Wobble"}}}},
		{"bad color", SpriteTrack{Path: "a.png", Keyframes: []Keyframe{{Time: 0, Color: "orange"}}}},
	}

	d := NewDirector(storyboard.DefaultCanvas, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Build(&Scenario{Sprites: []SpriteTrack{tt.track}})
			if !errors.Is(err, ErrScenario) {
				t.Errorf("Expected ErrScenario, got %v", err)
			}
		})
	}
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := Template("logo.png")
	scenario.Sprites[0].Loop = &Loop{Start: 500, Count: 2}

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := WriteScenario(scenario, tmpFile); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	readScenario, err := ReadScenario(tmpFile)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	if readScenario.Version != scenario.Version {
		t.Errorf("Version mismatch: expected %s, got %s", scenario.Version, readScenario.Version)
	}
	if len(readScenario.Sprites) != 1 {
		t.Fatalf("Sprite count mismatch: got %d", len(readScenario.Sprites))
	}

	got := readScenario.Sprites[0]
	if got.Loop == nil || *got.Loop != *scenario.Sprites[0].Loop {
		t.Errorf("Loop lost: %+v", got.Loop)
	}
	kf := got.Keyframes[2]
	if kf.Pos != nil || kf.Opacity == nil || *kf.Opacity != 0 || kf.Easing != "SineIn" {
		t.Errorf("Keyframe mismatch: %+v", kf)
	}
}

func TestReadScenarioInvalid(t *testing.T) {
	if _, err := ReadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadScenarioUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	os.WriteFile(path, []byte("sprites:\n  - path: a.png\n    keyframes:\n      - time: 0\n        opacty: 1\n"), 0644)

	if _, err := ReadScenario(path); err == nil {
		t.Error("Expected error for a misspelled keyframe field")
	}
}
