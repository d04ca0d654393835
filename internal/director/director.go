package director

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/easing"
	"github.com/ivlev/storyboard/internal/source"
	"github.com/ivlev/storyboard/internal/storyboard"
	"github.com/ivlev/storyboard/internal/tween"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrScenario marks a scenario that cannot be turned into sprites.
var ErrScenario = errors.New("invalid scenario")

// Director turns keyframe scenarios into animated sprites
type Director struct {
	Canvas   storyboard.Canvas
	Resolver source.Resolver
}

// NewDirector creates a Director for the given canvas. A nil resolver
// accepts every texture path.
func NewDirector(canvas storyboard.Canvas, resolver source.Resolver) *Director {
	if resolver == nil {
		resolver = source.NewStatic()
	}
	return &Director{Canvas: canvas, Resolver: resolver}
}

// frame is a keyframe with every value filled in, positions in engine space.
type frame struct {
	time     int
	curve    easing.Curve
	pos      tween.Point
	scale    float64
	opacity  float64
	rotation float64
	color    tween.Color
}

// animated records which properties a track mentions at least once.
type animated struct {
	pos, scale, opacity, rotation, color bool
}

// Build creates one sprite per scenario track. Each pair of consecutive
// keyframes becomes a tween per animated property; a track with a single
// keyframe gets keyframe tweens.
func (d *Director) Build(sc *Scenario) ([]*storyboard.Sprite, error) {
	canvas := d.Canvas
	if sc.Canvas.W > 0 && sc.Canvas.H > 0 {
		canvas = storyboard.NewCanvas(sc.Canvas.W, sc.Canvas.H)
	}

	sprites := make([]*storyboard.Sprite, 0, len(sc.Sprites))
	for i, track := range sc.Sprites {
		s, err := d.buildSprite(canvas, track)
		if err != nil {
			return nil, fmt.Errorf("sprite %d (%s): %w", i, track.Path, err)
		}
		s.ZOrder = i
		sprites = append(sprites, s)
	}
	return sprites, nil
}

func (d *Director) buildSprite(canvas storyboard.Canvas, track SpriteTrack) (*storyboard.Sprite, error) {
	if track.Path == "" {
		return nil, fmt.Errorf("missing path: %w", ErrScenario)
	}
	if len(track.Keyframes) == 0 {
		return nil, fmt.Errorf("no keyframes: %w", ErrScenario)
	}

	origin := storyboard.Centre
	if track.Origin != "" {
		o, ok := storyboard.ParseOrigin(track.Origin)
		if !ok {
			return nil, fmt.Errorf("unknown origin %q: %w", track.Origin, ErrScenario)
		}
		origin = o
	}
	layer := track.Layer
	if layer == "" {
		layer = "Foreground"
	}

	tex, err := d.Resolver.Resolve(track.Path)
	if err != nil {
		return nil, err
	}

	initial := canvas.ToEngine(track.X, track.Y)
	frames, used, err := resolveFrames(canvas, initial, track.Keyframes)
	if err != nil {
		return nil, err
	}

	s := storyboard.NewSprite(layer, origin, track.Path, tex, initial)
	m := s.Anim

	if track.Loop == nil {
		return s, recordFrames(m, used, frames, 0)
	}

	// Iterations are laid out here rather than through the manager's loop
	// buffer, which places every buffered tween at the iteration start.
	dur := frames[len(frames)-1].time
	for r := 0; r < track.Loop.Count; r++ {
		if err := recordFrames(m, used, frames, track.Loop.Start+r*dur); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// recordFrames records the segments between consecutive frames shifted by
// offset. A single frame becomes a zero-length tween.
func recordFrames(m *animation.Manager, used animated, frames []frame, offset int) error {
	if len(frames) == 1 {
		a := frames[0].shift(offset)
		return record(m, used, a, a)
	}
	for i := 1; i < len(frames); i++ {
		if err := record(m, used, frames[i-1].shift(offset), frames[i].shift(offset)); err != nil {
			return err
		}
	}
	return nil
}

func (f frame) shift(offset int) frame {
	f.time += offset
	return f
}

// resolveFrames sorts keyframes by time and fills unset values from the
// previous keyframe, starting from the sprite's resting state.
func resolveFrames(canvas storyboard.Canvas, initial tween.Point, keys []Keyframe) ([]frame, animated, error) {
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	var used animated
	cur := frame{pos: initial, scale: 1, opacity: 1, color: tween.White}
	frames := make([]frame, 0, len(sorted))

	for _, kf := range sorted {
		cur.time = kf.Time
		cur.curve = easing.Linear
		if kf.Easing != "" {
			c, ok := easing.Parse(kf.Easing)
			if !ok {
				return nil, used, fmt.Errorf("keyframe at %dms: unknown easing %q: %w", kf.Time, kf.Easing, ErrScenario)
			}
			cur.curve = c
		}
		if kf.Pos != nil {
			cur.pos = canvas.ToEngine(kf.Pos.X, kf.Pos.Y)
			used.pos = true
		}
		if kf.Scale != nil {
			cur.scale = *kf.Scale
			used.scale = true
		}
		if kf.Opacity != nil {
			cur.opacity = *kf.Opacity
			used.opacity = true
		}
		if kf.Rotation != nil {
			cur.rotation = *kf.Rotation
			used.rotation = true
		}
		if kf.Color != "" {
			c, err := colorful.Hex(kf.Color)
			if err != nil {
				return nil, used, fmt.Errorf("keyframe at %dms: color %q: %w", kf.Time, kf.Color, ErrScenario)
			}
			cur.color = tween.Color(c)
			used.color = true
		}
		frames = append(frames, cur)
	}
	return frames, used, nil
}

// record adds the tweens taking a sprite from a to b, eased with b's curve.
func record(m *animation.Manager, used animated, a, b frame) error {
	e := b.curve
	if used.pos {
		if err := m.AddPoint(animation.Move, e, a.time, b.time, a.pos, b.pos); err != nil {
			return err
		}
	}
	if used.scale {
		if err := m.AddScalar(animation.Scale, e, a.time, b.time, a.scale, b.scale); err != nil {
			return err
		}
	}
	if used.opacity {
		if err := m.AddScalar(animation.Fade, e, a.time, b.time, a.opacity, b.opacity); err != nil {
			return err
		}
	}
	if used.rotation {
		if err := m.AddScalar(animation.Rotate, e, a.time, b.time, a.rotation, b.rotation); err != nil {
			return err
		}
	}
	if used.color {
		return m.AddColor(e, a.time, b.time, a.color, b.color)
	}
	return nil
}

// Template returns a starter scenario: one sprite fading in while it
// slides to the centre, then fading out.
func Template(texture string) *Scenario {
	zero, one := 0.0, 1.0
	return &Scenario{
		Version: "1.0",
		Canvas:  Size{W: 854, H: 480},
		Sprites: []SpriteTrack{
			{
				Path:   texture,
				Origin: "Centre",
				Layer:  "Foreground",
				X:      427,
				Y:      240,
				Keyframes: []Keyframe{
					{Time: 0, Pos: &tween.Point{X: 200, Y: 240}, Opacity: &zero},
					{Time: 1000, Easing: "CubicOut", Pos: &tween.Point{X: 427, Y: 240}, Opacity: &one},
					{Time: 3000, Easing: "SineIn", Opacity: &zero},
				},
			},
		},
	}
}
