package animation

import "github.com/ivlev/storyboard/internal/tween"

// State is the recording state of a Manager: Idle or Recording.
type State interface {
	isState()
}

// Idle means tweens go straight into the tracks.
type Idle struct{}

// Recording means tweens are buffered into Loop until EndLoop.
type Recording struct {
	Loop *LoopBuffer
}

func (Idle) isState()      {}
func (Recording) isState() {}

type buffered[T tween.Lerper[T]] struct {
	prop Property
	tw   tween.Tween[T]
}

// LoopBuffer collects the tweens of one loop block, with times relative to
// the loop start.
type LoopBuffer struct {
	Start int
	Count int

	scalars []buffered[tween.Scalar]
	points  []buffered[tween.Point]
	colors  []buffered[tween.Color]
}

// Len returns the number of buffered tweens.
func (b *LoopBuffer) Len() int {
	return len(b.scalars) + len(b.points) + len(b.colors)
}

// Duration is the latest end time over every buffered tween of every
// property.
func (b *LoopBuffer) Duration() int {
	d := 0
	for _, s := range b.scalars {
		d = max(d, s.tw.End)
	}
	for _, p := range b.points {
		d = max(d, p.tw.End)
	}
	for _, c := range b.colors {
		d = max(d, c.tw.End)
	}
	return d
}

// StartLoop opens a loop block. Calling it while a loop is already open
// discards the previous buffer; loops do not nest.
func (m *Manager) StartLoop(start, count int) {
	if count < 0 {
		count = 0
	}
	m.state = Recording{Loop: &LoopBuffer{Start: start, Count: count}}
}

// EndLoop closes the open loop block and unrolls it: iteration r places
// every buffered tween at Start + r*Duration, keeping its own length,
// easing and values. It does nothing when no loop is open.
func (m *Manager) EndLoop() {
	rec, ok := m.state.(Recording)
	if !ok {
		return
	}
	m.state = Idle{}

	loop := rec.Loop
	d := loop.Duration()
	for r := 0; r < loop.Count; r++ {
		base := loop.Start + r*d
		for _, b := range loop.scalars {
			m.scalarTrack(b.prop).Insert(shift(b.tw, base))
		}
		for _, b := range loop.points {
			m.pointTrack(b.prop).Insert(shift(b.tw, base))
		}
		for _, b := range loop.colors {
			m.color.Insert(shift(b.tw, base))
		}
	}

	m.loops = append(m.loops, Window{Start: loop.Start, End: loop.Start + d*loop.Count})
}

func shift[T tween.Lerper[T]](tw tween.Tween[T], base int) tween.Tween[T] {
	length := tw.End - tw.Start
	tw.Start = base
	tw.End = base + length
	return tw
}
