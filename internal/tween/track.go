package tween

import (
	"sort"

	"github.com/ivlev/storyboard/internal/easing"
)

// Tween is a timed, eased transition between two values. Times are in
// milliseconds; Start == End is an instantaneous keyframe.
type Tween[T Lerper[T]] struct {
	Easing easing.Curve
	Start  int
	End    int
	From   T
	To     T
}

// IsKeyframe reports whether the tween has no duration.
func (tw Tween[T]) IsKeyframe() bool {
	return tw.Start == tw.End
}

// Duration returns End - Start.
func (tw Tween[T]) Duration() int {
	return tw.End - tw.Start
}

// Contains reports whether time falls inside [Start, End].
func (tw Tween[T]) Contains(time int) bool {
	return time >= tw.Start && time <= tw.End
}

// ValueAt interpolates the tween at time. Callers are expected to pass a
// time inside the tween; values outside are extrapolated through the curve.
func (tw Tween[T]) ValueAt(time int) T {
	if tw.End <= tw.Start {
		if time >= tw.Start {
			return tw.To
		}
		return tw.From
	}
	progress := float64(time-tw.Start) / float64(tw.End-tw.Start)
	return tw.From.Lerp(tw.To, tw.Easing.Apply(progress))
}

// Track holds every tween of one property, sorted ascending by Start.
type Track[T Lerper[T]] struct {
	tweens []Tween[T]
}

// Insert adds tw keeping the track sorted. Tweens with equal starts keep
// their insertion order.
func (tr *Track[T]) Insert(tw Tween[T]) {
	i := sort.Search(len(tr.tweens), func(i int) bool {
		return tr.tweens[i].Start > tw.Start
	})
	tr.tweens = append(tr.tweens, Tween[T]{})
	copy(tr.tweens[i+1:], tr.tweens[i:])
	tr.tweens[i] = tw
}

// Len returns the number of tweens.
func (tr *Track[T]) Len() int { return len(tr.tweens) }

// Empty reports whether the track has no tweens.
func (tr *Track[T]) Empty() bool { return len(tr.tweens) == 0 }

// Tweens returns the sorted tweens. The slice must not be modified.
func (tr *Track[T]) Tweens() []Tween[T] { return tr.tweens }

// Bounds returns the earliest start and latest end of the track.
func (tr *Track[T]) Bounds() (start, end int, ok bool) {
	if len(tr.tweens) == 0 {
		return 0, 0, false
	}
	start = tr.tweens[0].Start
	end = tr.tweens[0].End
	for _, tw := range tr.tweens[1:] {
		if tw.End > end {
			end = tw.End
		}
	}
	return start, end, true
}

// LastStarted returns the index of the last tween whose Start <= time, or -1.
func (tr *Track[T]) LastStarted(time int) int {
	return sort.Search(len(tr.tweens), func(i int) bool {
		return tr.tweens[i].Start > time
	}) - 1
}

// At evaluates the track at time. Before the first tween it holds that
// tween's From; after a finished tween it holds its To; an empty track
// returns def.
func (tr *Track[T]) At(time int, def T) T {
	if len(tr.tweens) == 0 {
		return def
	}
	i := tr.LastStarted(time)
	if i < 0 {
		return tr.tweens[0].From
	}
	tw := tr.tweens[i]
	if time > tw.End {
		return tw.To
	}
	return tw.ValueAt(time)
}
