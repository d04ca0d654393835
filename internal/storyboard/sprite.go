package storyboard

import (
	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/source"
	"github.com/ivlev/storyboard/internal/tween"
)

// Sprite is one animated object of a storyboard. It exclusively owns its
// animation manager.
type Sprite struct {
	Layer    string
	Origin   Origin
	Path     string
	Texture  source.Handle
	Position tween.Point // engine coordinates, canvas centre at (0,0), Y up
	ZOrder   int
	Anim     *animation.Manager
}

// NewSprite creates a sprite with an idle, empty animation manager.
func NewSprite(layer string, origin Origin, path string, tex source.Handle, pos tween.Point) *Sprite {
	return &Sprite{
		Layer:    layer,
		Origin:   origin,
		Path:     path,
		Texture:  tex,
		Position: pos,
		Anim:     animation.NewManager(),
	}
}

// State derives the sprite's visual state at t (ms).
func (s *Sprite) State(t int, scaleFactor float64) animation.VisualState {
	return s.Anim.VisualState(t, scaleFactor, s.Position)
}

// IsActiveAt reports whether the sprite may be visible at t.
func (s *Sprite) IsActiveAt(t int) bool {
	return s.Anim.IsActiveAt(t)
}

// Canvas is the authoring canvas. Scripts use a top-left origin with Y
// pointing down; the engine uses the canvas centre with Y pointing up.
type Canvas struct {
	Width  float64
	Height float64
}

// DefaultCanvas is the 854x480 widescreen authoring canvas.
var DefaultCanvas = Canvas{Width: 854, Height: 480}

// NewCanvas builds a canvas from integer dimensions.
func NewCanvas(width, height int) Canvas {
	return Canvas{Width: float64(width), Height: float64(height)}
}

func (c Canvas) EngineX(x float64) float64 { return x - c.Width/2 }
func (c Canvas) EngineY(y float64) float64 { return c.Height/2 - y }
func (c Canvas) ScriptX(x float64) float64 { return x + c.Width/2 }
func (c Canvas) ScriptY(y float64) float64 { return c.Height/2 - y }

// ToEngine converts script coordinates to engine coordinates.
func (c Canvas) ToEngine(x, y float64) tween.Point {
	return tween.Point{X: c.EngineX(x), Y: c.EngineY(y)}
}

// ToScript converts engine coordinates back to script coordinates.
func (c Canvas) ToScript(p tween.Point) (x, y float64) {
	return c.ScriptX(p.X), c.ScriptY(p.Y)
}
