package director

import "github.com/ivlev/storyboard/internal/tween"

// Scenario is a keyframe description of a storyboard, authored in YAML.
type Scenario struct {
	Version string        `yaml:"version"`
	Canvas  Size          `yaml:"canvas,omitempty"`
	Sprites []SpriteTrack `yaml:"sprites"`
}

// Size is the authoring canvas. A zero size keeps the director's canvas.
type Size struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// SpriteTrack is one sprite and the keyframes it passes through.
type SpriteTrack struct {
	Path      string     `yaml:"path"`
	Origin    string     `yaml:"origin,omitempty"`
	Layer     string     `yaml:"layer,omitempty"`
	X         float64    `yaml:"x"` // Script coordinates
	Y         float64    `yaml:"y"`
	Loop      *Loop      `yaml:"loop,omitempty"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Loop repeats the keyframes Count times from Start. Keyframe times are
// then relative to the start of each iteration, and an iteration lasts
// until the last keyframe. A non-positive Count records nothing.
type Loop struct {
	Start int `yaml:"start"`
	Count int `yaml:"count"`
}

// Keyframe is the state of a sprite at one moment. Unset fields carry the
// previous keyframe's value.
type Keyframe struct {
	Time     int          `yaml:"time"`             // Milliseconds
	Easing   string       `yaml:"easing,omitempty"` // Curve used to arrive here
	Pos      *tween.Point `yaml:"pos,omitempty"`    // Script coordinates
	Scale    *float64     `yaml:"scale,omitempty"`
	Opacity  *float64     `yaml:"opacity,omitempty"`
	Rotation *float64     `yaml:"rotation,omitempty"` // Radians
	Color    string       `yaml:"color,omitempty"`    // #rrggbb
}
