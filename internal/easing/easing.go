package easing

import (
	"math"
	"strings"
)

// Curve identifies an easing function. The numeric value is the wire index
// used by storyboard scripts, so the declaration order must never change.
type Curve int

const (
	Linear Curve = iota
	EasingOut
	EasingIn
	QuadIn
	QuadOut
	QuadInOut
	CubicIn
	CubicOut
	CubicInOut
	QuartIn
	QuartOut
	QuartInOut
	QuintIn
	QuintOut
	QuintInOut
	SineIn
	SineOut
	SineInOut
	ExpoIn
	ExpoOut
	ExpoInOut
	CircIn
	CircOut
	CircInOut
	ElasticIn
	ElasticOut
	ElasticHalfOut
	ElasticQuarterOut
	ElasticInOut
	BackIn
	BackOut
	BackInOut
	BounceIn
	BounceOut
	BounceInOut

	curveCount
)

var names = [curveCount]string{
	"Linear", "EasingOut", "EasingIn",
	"QuadIn", "QuadOut", "QuadInOut",
	"CubicIn", "CubicOut", "CubicInOut",
	"QuartIn", "QuartOut", "QuartInOut",
	"QuintIn", "QuintOut", "QuintInOut",
	"SineIn", "SineOut", "SineInOut",
	"ExpoIn", "ExpoOut", "ExpoInOut",
	"CircIn", "CircOut", "CircInOut",
	"ElasticIn", "ElasticOut", "ElasticHalfOut", "ElasticQuarterOut", "ElasticInOut",
	"BackIn", "BackOut", "BackInOut",
	"BounceIn", "BounceOut", "BounceInOut",
}

// Count returns the number of known curves.
func Count() int { return int(curveCount) }

// FromIndex maps a wire index to a curve.
func FromIndex(i int) (Curve, bool) {
	if i < 0 || i >= int(curveCount) {
		return Linear, false
	}
	return Curve(i), true
}

// Index returns the wire index of the curve.
func (c Curve) Index() int { return int(c) }

// Valid reports whether c is a declared curve.
func (c Curve) Valid() bool { return c >= 0 && c < curveCount }

func (c Curve) String() string {
	if !c.Valid() {
		return "Linear"
	}
	return names[c]
}

// Parse looks a curve up by name (case-insensitive).
func Parse(name string) (Curve, bool) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return Curve(i), true
		}
	}
	return Linear, false
}

// HasMath reports whether the curve has its own formula. Every other curve
// returns progress unchanged; existing scripts depend on that output.
func (c Curve) HasMath() bool {
	switch c {
	case Linear, EasingOut, EasingIn, QuadIn, CubicIn, CubicOut, QuintIn, SineIn, CircIn, CircOut:
		return true
	}
	return false
}

// Apply maps normalized progress to eased progress. Input outside [0,1] is
// not clamped.
func (c Curve) Apply(p float64) float64 {
	switch c {
	case EasingOut:
		return -p * (p - 2)
	case EasingIn, QuadIn:
		return p * p
	case CubicIn:
		return p * p * p
	case CubicOut:
		q := p - 1
		return q*q*q + 1
	case QuintIn:
		return p * p * p * p * p
	case SineIn:
		return 1 - math.Cos(p*math.Pi/2)
	case CircIn:
		return 1 - math.Sqrt(1-p*p)
	case CircOut:
		return math.Sqrt((2 - p) * p)
	default:
		return p
	}
}

// Evaluate is Apply addressed by curve id.
func Evaluate(c Curve, p float64) float64 {
	return c.Apply(p)
}
