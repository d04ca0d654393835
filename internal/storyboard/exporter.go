package storyboard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/tween"
)

// ErrOrder is returned when an export order references a missing sprite.
var ErrOrder = errors.New("export order out of range")

// Exporter writes sprites back to storyboard script text. It is the inverse
// of Parser for the same canvas.
type Exporter struct {
	Canvas Canvas
}

// NewExporter returns an exporter for the given canvas.
func NewExporter(canvas Canvas) *Exporter {
	return &Exporter{Canvas: canvas}
}

// Export writes the sprites in the given order. order holds indices into
// sprites; nil writes them in slice order.
func (e *Exporter) Export(w io.Writer, sprites []*Sprite, order []int) error {
	if order == nil {
		order = make([]int, len(sprites))
		for i := range order {
			order[i] = i
		}
	}

	bw := bufio.NewWriter(w)
	for _, idx := range order {
		if idx < 0 || idx >= len(sprites) {
			return fmt.Errorf("index %d of %d sprites: %w", idx, len(sprites), ErrOrder)
		}
		e.writeSprite(bw, sprites[idx])
	}
	return bw.Flush()
}

// ExportString returns the script text for the sprites.
func (e *Exporter) ExportString(sprites []*Sprite, order []int) (string, error) {
	var sb strings.Builder
	if err := e.Export(&sb, sprites, order); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ExportFile writes the script to path through a temporary file in the same
// directory, so readers never see a half-written script.
func (e *Exporter) ExportFile(path string, sprites []*Sprite, order []int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := e.Export(tmp, sprites, order); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (e *Exporter) writeSprite(w *bufio.Writer, s *Sprite) {
	c := e.Canvas
	x, y := c.ToScript(s.Position)
	fmt.Fprintf(w, "Sprite,%s,%s,\"%s\",%s,%s\n", s.Layer, s.Origin, s.Path, num(x), num(y))

	m := s.Anim
	writeScalars(w, "F", m.ScalarTweens(animation.Fade), nil)
	writeScalars(w, "S", m.ScalarTweens(animation.Scale), nil)
	writeScalars(w, "R", m.ScalarTweens(animation.Rotate), nil)
	writeScalars(w, "MY", m.ScalarTweens(animation.MoveY), c.ScriptY)
	writeScalars(w, "MX", m.ScalarTweens(animation.MoveX), c.ScriptX)

	for _, tw := range m.PointTweens(animation.Move) {
		x1, y1 := c.ToScript(tw.From)
		x2, y2 := c.ToScript(tw.To)
		fmt.Fprintf(w, "M,%d,%d,%d,%s,%s,%s,%s\n",
			tw.Easing.Index(), tw.Start, tw.End, num(x1), num(y1), num(x2), num(y2))
	}
	for _, tw := range m.PointTweens(animation.VectorScale) {
		fmt.Fprintf(w, "V,%d,%d,%d,%s,%s,%s,%s\n",
			tw.Easing.Index(), tw.Start, tw.End, num(tw.From.X), num(tw.From.Y), num(tw.To.X), num(tw.To.Y))
	}
	for _, tw := range m.ColorTweens() {
		r1, g1, b1 := tw.From.Components255()
		r2, g2, b2 := tw.To.Components255()
		fmt.Fprintf(w, "C,%d,%d,%d,%s,%s,%s,%s,%s,%s\n",
			tw.Easing.Index(), tw.Start, tw.End, num(r1), num(g1), num(b1), num(r2), num(g2), num(b2))
	}
	for _, tw := range m.ScalarTweens(animation.Additive) {
		if tw.IsKeyframe() {
			fmt.Fprintf(w, "P,0,%d,%d,%s\n", tw.Start, tw.End, additiveMarker)
			continue
		}
		fmt.Fprintf(w, "P,%d,%d,%d,%s\n", tw.Easing.Index(), tw.Start, tw.End, additiveMarker)
	}
}

func writeScalars(w *bufio.Writer, kw string, tweens []tween.Tween[tween.Scalar], conv func(float64) float64) {
	for _, tw := range tweens {
		from, to := float64(tw.From), float64(tw.To)
		if conv != nil {
			from, to = conv(from), conv(to)
		}
		fmt.Fprintf(w, "%s,%d,%d,%d,%s,%s\n", kw, tw.Easing.Index(), tw.Start, tw.End, num(from), num(to))
	}
}

// num formats v as the shortest decimal, dropping noise below 1e-9 left by
// coordinate and color conversions. Magnitudes past 1e15 have no digits
// below 1e-9 and are written as is.
func num(v float64) string {
	if math.Abs(v) < 1e15 {
		v = math.Round(v*1e9) / 1e9
	}
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
