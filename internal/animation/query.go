package animation

import (
	"math"

	"github.com/ivlev/storyboard/internal/tween"
)

// ActiveWindow returns the earliest start and latest end over every track
// and every unrolled loop. The result is computed once; later tweens do not
// change it. An object with no tweens has the window [0, 0].
func (m *Manager) ActiveWindow() Window {
	if m.windowReady {
		return m.window
	}

	w := Window{Start: math.MaxInt, End: math.MinInt}
	extend := func(start, end int, ok bool) {
		if !ok {
			return
		}
		w.Start = min(w.Start, start)
		w.End = max(w.End, end)
	}

	extend(m.moveX.Bounds())
	extend(m.moveY.Bounds())
	extend(m.scale.Bounds())
	extend(m.rotate.Bounds())
	extend(m.fade.Bounds())
	extend(m.additive.Bounds())
	extend(m.move.Bounds())
	extend(m.vectorScale.Bounds())
	extend(m.color.Bounds())
	for _, l := range m.loops {
		extend(l.Start, l.End, true)
	}

	if w.Start > w.End {
		w = Window{}
	}
	m.window = w
	m.windowReady = true
	return w
}

// Alpha returns the opacity at t; objects without fade tweens are opaque.
func (m *Manager) Alpha(t int) float64 {
	return float64(m.fade.At(t, 1))
}

// IsActiveAt reports whether t is inside the active window and the opacity
// at t is above zero.
func (m *Manager) IsActiveAt(t int) bool {
	return m.ActiveWindow().Contains(t) && m.Alpha(t) > activeAlpha
}

// BlendAt returns the blend mode at t. Additive applies inside any additive
// interval, and from the first additive keyframe onwards. "A" is the only
// marker kept (H and V are dropped at parse time), so nothing later can
// switch a keyframe back off, not even a later bounded interval.
func (m *Manager) BlendAt(t int) Blend {
	tweens := m.additive.Tweens()
	for i := m.additive.LastStarted(t); i >= 0; i-- {
		tw := tweens[i]
		if tw.IsKeyframe() || t <= tw.End {
			return BlendAdditive
		}
	}
	return BlendAlpha
}

// ScaleAt returns the per-axis scale at t. A vector-scale track, when
// present, wins over uniform scale.
func (m *Manager) ScaleAt(t int) tween.Point {
	if !m.vectorScale.Empty() {
		return m.vectorScale.At(t, tween.Point{X: 1, Y: 1})
	}
	s := float64(m.scale.At(t, 1))
	return tween.Point{X: s, Y: s}
}

// PositionAt returns the position at t in engine coordinates. The combined
// move track wins over the per-axis tracks, which win over initial.
func (m *Manager) PositionAt(t int, initial tween.Point) tween.Point {
	if !m.move.Empty() {
		return m.move.At(t, initial)
	}
	if !m.moveX.Empty() || !m.moveY.Empty() {
		return tween.Point{
			X: float64(m.moveX.At(t, tween.Scalar(initial.X))),
			Y: float64(m.moveY.At(t, tween.Scalar(initial.Y))),
		}
	}
	return initial
}

// VisualState derives the drawable state at t. The position is divided by
// scaleFactor, the external display scale; zero is treated as one.
func (m *Manager) VisualState(t int, scaleFactor float64, initial tween.Point) VisualState {
	if scaleFactor == 0 {
		scaleFactor = 1
	}

	vs := VisualState{
		Alpha:    m.Alpha(t),
		Scale:    m.ScaleAt(t),
		Position: m.PositionAt(t, initial).Div(scaleFactor),
		Rotation: -float64(m.rotate.At(t, 0)),
		Blend:    m.BlendAt(t),
		Color:    m.color.At(t, tween.White),
	}
	vs.Hidden = !m.ActiveWindow().Contains(t) ||
		vs.Alpha < visibleAlpha ||
		(vs.Scale.X == 0 && vs.Scale.Y == 0)
	return vs
}
