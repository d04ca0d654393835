package animation

import (
	"errors"
	"fmt"

	"github.com/ivlev/storyboard/internal/easing"
	"github.com/ivlev/storyboard/internal/tween"
)

// ErrValueKind is returned when a value does not match the property's kind.
var ErrValueKind = errors.New("value kind does not match property")

const (
	// activeAlpha is the opacity above which IsActiveAt reports true.
	activeAlpha = 0.0001
	// visibleAlpha is the opacity below which a sprite is hidden.
	visibleAlpha = 0.001
)

// Window is the [Start, End] range during which an object may be visible.
type Window struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Contains reports whether t lies inside the window, bounds included.
func (w Window) Contains(t int) bool {
	return t >= w.Start && t <= w.End
}

// VisualState is everything a presentation layer needs to draw a sprite at
// one moment.
type VisualState struct {
	Alpha    float64     `yaml:"alpha"`
	Scale    tween.Point `yaml:"scale"`
	Position tween.Point `yaml:"position"`
	Rotation float64     `yaml:"rotation"`
	Blend    Blend       `yaml:"blend"`
	Color    tween.Color `yaml:"-"`
	Hidden   bool        `yaml:"hidden"`
}

// Manager owns every track of one animated object. Tweens are recorded
// either straight into the tracks or, between StartLoop and EndLoop, into a
// loop buffer that is unrolled when the loop closes.
//
// The active window is computed on first use and cached for the lifetime of
// the Manager: tweens added after the first query do not move it. Callers
// must finish recording before querying.
type Manager struct {
	moveX    tween.Track[tween.Scalar]
	moveY    tween.Track[tween.Scalar]
	scale    tween.Track[tween.Scalar]
	rotate   tween.Track[tween.Scalar]
	fade     tween.Track[tween.Scalar]
	additive tween.Track[tween.Scalar]

	move        tween.Track[tween.Point]
	vectorScale tween.Track[tween.Point]

	color tween.Track[tween.Color]

	state State
	loops []Window

	window      Window
	windowReady bool
}

// NewManager returns an idle Manager with no tweens.
func NewManager() *Manager {
	return &Manager{state: Idle{}}
}

// State returns the current recording state.
func (m *Manager) State() State {
	if m.state == nil {
		return Idle{}
	}
	return m.state
}

// Recording reports whether a loop block is open.
func (m *Manager) Recording() bool {
	_, ok := m.state.(Recording)
	return ok
}

// AddTween records a tween of any property. from and to must carry the
// property's value kind.
func (m *Manager) AddTween(p Property, e easing.Curve, start, end int, from, to tween.Value) error {
	if p < MoveX || p > Additive || from == nil || to == nil ||
		from.Kind() != p.Kind() || to.Kind() != p.Kind() {
		return fmt.Errorf("%s: %w", p, ErrValueKind)
	}

	switch p.Kind() {
	case tween.KindPoint:
		m.recordPoint(p, tween.Tween[tween.Point]{
			Easing: e, Start: start, End: end,
			From: from.(tween.Point), To: to.(tween.Point),
		})
	case tween.KindColor:
		m.recordColor(tween.Tween[tween.Color]{
			Easing: e, Start: start, End: end,
			From: from.(tween.Color), To: to.(tween.Color),
		})
	default:
		m.recordScalar(p, tween.Tween[tween.Scalar]{
			Easing: e, Start: start, End: end,
			From: from.(tween.Scalar), To: to.(tween.Scalar),
		})
	}
	return nil
}

// AddScalar records a tween on a scalar property.
func (m *Manager) AddScalar(p Property, e easing.Curve, start, end int, from, to float64) error {
	return m.AddTween(p, e, start, end, tween.Scalar(from), tween.Scalar(to))
}

// AddPoint records a tween on Move or VectorScale.
func (m *Manager) AddPoint(p Property, e easing.Curve, start, end int, from, to tween.Point) error {
	return m.AddTween(p, e, start, end, from, to)
}

// AddColor records a color tween.
func (m *Manager) AddColor(e easing.Curve, start, end int, from, to tween.Color) error {
	return m.AddTween(Color, e, start, end, from, to)
}

// AddAdditive records an additive-blend marker. start == end makes it a
// sticky keyframe.
func (m *Manager) AddAdditive(e easing.Curve, start, end int) error {
	return m.AddTween(Additive, e, start, end, tween.Scalar(1), tween.Scalar(1))
}

func (m *Manager) recordScalar(p Property, tw tween.Tween[tween.Scalar]) {
	switch s := m.state.(type) {
	case Recording:
		s.Loop.scalars = append(s.Loop.scalars, buffered[tween.Scalar]{prop: p, tw: tw})
	default:
		m.scalarTrack(p).Insert(tw)
	}
}

func (m *Manager) recordPoint(p Property, tw tween.Tween[tween.Point]) {
	switch s := m.state.(type) {
	case Recording:
		s.Loop.points = append(s.Loop.points, buffered[tween.Point]{prop: p, tw: tw})
	default:
		m.pointTrack(p).Insert(tw)
	}
}

func (m *Manager) recordColor(tw tween.Tween[tween.Color]) {
	switch s := m.state.(type) {
	case Recording:
		s.Loop.colors = append(s.Loop.colors, buffered[tween.Color]{prop: Color, tw: tw})
	default:
		m.color.Insert(tw)
	}
}

func (m *Manager) scalarTrack(p Property) *tween.Track[tween.Scalar] {
	switch p {
	case MoveX:
		return &m.moveX
	case MoveY:
		return &m.moveY
	case Scale:
		return &m.scale
	case Rotate:
		return &m.rotate
	case Additive:
		return &m.additive
	default:
		return &m.fade
	}
}

func (m *Manager) pointTrack(p Property) *tween.Track[tween.Point] {
	if p == VectorScale {
		return &m.vectorScale
	}
	return &m.move
}

// ScalarTweens returns the sorted tweens of a scalar property.
func (m *Manager) ScalarTweens(p Property) []tween.Tween[tween.Scalar] {
	if p.Kind() != tween.KindScalar {
		return nil
	}
	return m.scalarTrack(p).Tweens()
}

// PointTweens returns the sorted tweens of Move or VectorScale.
func (m *Manager) PointTweens(p Property) []tween.Tween[tween.Point] {
	if p.Kind() != tween.KindPoint {
		return nil
	}
	return m.pointTrack(p).Tweens()
}

// ColorTweens returns the sorted color tweens.
func (m *Manager) ColorTweens() []tween.Tween[tween.Color] {
	return m.color.Tweens()
}

// TweenCount returns the number of tweens across all tracks.
func (m *Manager) TweenCount() int {
	return m.moveX.Len() + m.moveY.Len() + m.scale.Len() + m.rotate.Len() +
		m.fade.Len() + m.additive.Len() + m.move.Len() + m.vectorScale.Len() + m.color.Len()
}
