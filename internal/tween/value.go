package tween

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind tags the concrete type behind a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindPoint
	KindColor
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPoint:
		return "point"
	case KindColor:
		return "color"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is the closed set of animatable values: Scalar, Point or Color.
type Value interface {
	Kind() Kind
	value()
}

// Lerper is a Value that can interpolate towards another value of its own type.
type Lerper[T any] interface {
	Value
	Lerp(to T, t float64) T
}

// Scalar is a single animated number (opacity, uniform scale, rotation, one axis).
type Scalar float64

func (Scalar) Kind() Kind { return KindScalar }
func (Scalar) value()     {}

func (s Scalar) Lerp(to Scalar, t float64) Scalar {
	return s + (to-s)*Scalar(t)
}

// Point is a 2D value (position, vector scale).
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (Point) Kind() Kind { return KindPoint }
func (Point) value()     {}

func (p Point) Lerp(to Point, t float64) Point {
	return Point{
		X: p.X + (to.X-p.X)*t,
		Y: p.Y + (to.Y-p.Y)*t,
	}
}

// Div divides both coordinates by f.
func (p Point) Div(f float64) Point {
	return Point{X: p.X / f, Y: p.Y / f}
}

// Color is an RGB color with components in [0,1].
type Color colorful.Color

// White is the color of an untinted sprite.
var White = Color{R: 1, G: 1, B: 1}

// RGB255 builds a Color from 0-255 components.
func RGB255(r, g, b float64) Color {
	return Color{R: r / 255, G: g / 255, B: b / 255}
}

func (Color) Kind() Kind { return KindColor }
func (Color) value()     {}

// Lerp blends linearly in RGB space.
func (c Color) Lerp(to Color, t float64) Color {
	return Color(colorful.Color(c).BlendRgb(colorful.Color(to), t))
}

// Components255 returns the 0-255 components.
func (c Color) Components255() (r, g, b float64) {
	return c.R * 255, c.G * 255, c.B * 255
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color(c).Clamped().Hex()
}
