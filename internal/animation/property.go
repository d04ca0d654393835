package animation

import (
	"fmt"

	"github.com/ivlev/storyboard/internal/tween"
)

// Property names one animated attribute of a sprite. Each property owns
// exactly one track.
type Property int

const (
	MoveX Property = iota
	MoveY
	Move
	Scale
	VectorScale
	Rotate
	Fade
	Color
	Additive
)

var propertyNames = map[Property]string{
	MoveX:       "moveX",
	MoveY:       "moveY",
	Move:        "move",
	Scale:       "scale",
	VectorScale: "vectorScale",
	Rotate:      "rotate",
	Fade:        "fade",
	Color:       "color",
	Additive:    "additive",
}

func (p Property) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// Kind returns the value kind stored by the property's track.
func (p Property) Kind() tween.Kind {
	switch p {
	case Move, VectorScale:
		return tween.KindPoint
	case Color:
		return tween.KindColor
	}
	return tween.KindScalar
}

// Blend is the compositing mode of a sprite at a point in time.
type Blend int

const (
	BlendAlpha Blend = iota
	BlendAdditive
)

func (b Blend) String() string {
	if b == BlendAdditive {
		return "additive"
	}
	return "alpha"
}

// MarshalYAML writes the blend mode by name.
func (b Blend) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}
