package storyboard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ivlev/storyboard/internal/animation"
	"github.com/ivlev/storyboard/internal/easing"
	"github.com/ivlev/storyboard/internal/source"
	"github.com/ivlev/storyboard/internal/tween"
)

// ErrUnreadable is the only fatal parse error: the source could not be read.
var ErrUnreadable = errors.New("storyboard source unreadable")

// additiveMarker is the P parameter that switches on additive blending.
const additiveMarker = "A"

// Result is the output of one parse.
type Result struct {
	Sprites []*Sprite
	// Lines is the number of non-empty lines read.
	Lines int
	// Skipped counts lines that were logged and ignored.
	Skipped int
}

// Parser converts storyboard script text into sprites by driving each
// sprite's recording API.
type Parser struct {
	Canvas   Canvas
	Resolver source.Resolver
	Logger   *log.Logger
}

// NewParser returns a parser for the given canvas. A nil resolver accepts
// every texture path; a nil logger uses the standard logger.
func NewParser(canvas Canvas, resolver source.Resolver, logger *log.Logger) *Parser {
	if resolver == nil {
		resolver = source.NewStatic()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{Canvas: canvas, Resolver: resolver, Logger: logger}
}

type parseState struct {
	res       *Result
	cur       *Sprite
	line      int
	loopDepth int
}

// ParseFile parses the script at path.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, err, ErrUnreadable)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// ParseString parses script text held in memory.
func (p *Parser) ParseString(text string) *Result {
	// strings.Reader never fails.
	res, _ := p.Parse(strings.NewReader(text))
	return res
}

// Parse reads the whole script. Malformed lines are logged and skipped;
// only a read failure is returned as an error.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	st := &parseState{res: &Result{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		st.line++
		p.parseLine(st, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w: %w", st.line, err, ErrUnreadable)
	}

	p.commit(st)
	return st.res, nil
}

func (p *Parser) parseLine(st *parseState, raw string) {
	body := strings.TrimLeft(raw, " _")
	if strings.TrimSpace(body) == "" {
		return
	}
	if strings.HasPrefix(body, "//") || strings.HasPrefix(body, "[") {
		return
	}
	st.res.Lines++

	// Leaving the loop's indentation closes it.
	depth := len(raw) - len(body)
	if st.cur != nil && st.cur.Anim.Recording() && depth <= st.loopDepth {
		st.cur.Anim.EndLoop()
	}

	fields := splitFields(body)
	kw := fields[0]

	if kw == "Sprite" {
		p.sprite(st, fields)
		return
	}

	if !isCommand(kw) {
		p.skip(st, "unknown command %q", kw)
		return
	}
	if st.cur == nil {
		p.skip(st, "%s without an open sprite", kw)
		return
	}

	switch kw {
	case "F", "S", "R", "MX", "MY":
		p.scalar(st, kw, fields)
	case "M", "V":
		p.point(st, kw, fields)
	case "C":
		p.color(st, fields)
	case "L":
		st.cur.Anim.StartLoop(intField(fields, 1, 0), intField(fields, 2, 0))
		st.loopDepth = depth
	case "P":
		p.param(st, fields)
	}
}

func isCommand(kw string) bool {
	switch kw {
	case "F", "S", "R", "MX", "MY", "M", "V", "C", "L", "P":
		return true
	}
	return false
}

func (p *Parser) skip(st *parseState, format string, args ...interface{}) {
	st.res.Skipped++
	p.Logger.Printf("[!] line %d: "+format, append([]interface{}{st.line}, args...)...)
}

// commit closes any open loop and appends the current sprite to the result.
func (p *Parser) commit(st *parseState) {
	if st.cur == nil {
		return
	}
	st.cur.Anim.EndLoop()
	st.res.Sprites = append(st.res.Sprites, st.cur)
	st.cur = nil
}

// sprite handles Sprite,<layer>,<origin>,"<path>",<x>,<y>.
func (p *Parser) sprite(st *parseState, f []string) {
	p.commit(st)

	if len(f) < 4 {
		p.skip(st, "Sprite needs at least 4 fields, got %d", len(f))
		return
	}

	origin, ok := ParseOrigin(f[2])
	if !ok {
		p.Logger.Printf("[!] line %d: unknown origin %q, using Centre", st.line, f[2])
	}

	path := strings.Trim(f[3], `"`)
	tex, err := p.Resolver.Resolve(path)
	if err != nil {
		p.skip(st, "sprite dropped: %v", err)
		return
	}

	x := floatField(f, 4, p.Canvas.Width/2)
	y := floatField(f, 5, p.Canvas.Height/2)

	st.cur = NewSprite(f[1], origin, path, tex, p.Canvas.ToEngine(x, y))
	st.cur.ZOrder = len(st.res.Sprites)
	st.loopDepth = 0
}

// timing reads <easing>,<start>,<end>; a missing or broken end equals start.
func timing(f []string) (easing.Curve, int, int) {
	e, _ := easing.FromIndex(intField(f, 1, 0))
	start := intField(f, 2, 0)
	end := intField(f, 3, start)
	return e, start, end
}

// scalar handles F, S, R, MX and MY: <cmd>,<easing>,<start>,<end>,<from>[,<to>].
func (p *Parser) scalar(st *parseState, kw string, f []string) {
	if len(f) < 5 {
		p.skip(st, "%s needs at least 5 fields, got %d", kw, len(f))
		return
	}
	e, start, end := timing(f)
	from := floatField(f, 4, 0)
	to := floatField(f, 5, from)

	var prop animation.Property
	switch kw {
	case "F":
		prop = animation.Fade
	case "S":
		prop = animation.Scale
	case "R":
		prop = animation.Rotate
	case "MX":
		prop = animation.MoveX
		from, to = p.Canvas.EngineX(from), p.Canvas.EngineX(to)
	case "MY":
		prop = animation.MoveY
		from, to = p.Canvas.EngineY(from), p.Canvas.EngineY(to)
	}
	if err := st.cur.Anim.AddScalar(prop, e, start, end, from, to); err != nil {
		p.skip(st, "%s: %v", kw, err)
	}
}

// point handles M and V: <cmd>,<easing>,<start>,<end>,<x1>,<y1>[,<x2>,<y2>].
func (p *Parser) point(st *parseState, kw string, f []string) {
	if len(f) < 6 {
		p.skip(st, "%s needs at least 6 fields, got %d", kw, len(f))
		return
	}
	e, start, end := timing(f)
	from := tween.Point{X: floatField(f, 4, 0), Y: floatField(f, 5, 0)}
	to := from
	if len(f) >= 8 {
		to = tween.Point{X: floatField(f, 6, from.X), Y: floatField(f, 7, from.Y)}
	}

	prop := animation.VectorScale
	if kw == "M" {
		prop = animation.Move
		from = p.Canvas.ToEngine(from.X, from.Y)
		to = p.Canvas.ToEngine(to.X, to.Y)
	}
	if err := st.cur.Anim.AddPoint(prop, e, start, end, from, to); err != nil {
		p.skip(st, "%s: %v", kw, err)
	}
}

// color handles C,<easing>,<start>,<end>,<r>,<g>,<b>[,<r2>,<g2>,<b2>] with
// 0-255 components.
func (p *Parser) color(st *parseState, f []string) {
	if len(f) < 7 {
		p.skip(st, "C needs at least 7 fields, got %d", len(f))
		return
	}
	e, start, end := timing(f)
	from := tween.RGB255(floatField(f, 4, 0), floatField(f, 5, 0), floatField(f, 6, 0))
	to := from
	if len(f) >= 10 {
		r, g, b := from.Components255()
		to = tween.RGB255(floatField(f, 7, r), floatField(f, 8, g), floatField(f, 9, b))
	}
	if err := st.cur.Anim.AddColor(e, start, end, from, to); err != nil {
		p.skip(st, "C: %v", err)
	}
}

// param handles P,<easing>,<start>,<end>,<marker>. Only the additive marker
// is modelled; flips are ignored.
func (p *Parser) param(st *parseState, f []string) {
	if len(f) < 5 {
		p.skip(st, "P needs 5 fields, got %d", len(f))
		return
	}
	if strings.TrimSpace(f[4]) != additiveMarker {
		return
	}
	e, start, end := timing(f)
	if err := st.cur.Anim.AddAdditive(e, start, end); err != nil {
		p.skip(st, "P: %v", err)
	}
}

// splitFields splits on commas outside double quotes.
func splitFields(s string) []string {
	var fields []string
	var b strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case r == ',' && !quoted:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(b.String()))
}

func floatField(f []string, i int, def float64) float64 {
	if i >= len(f) {
		return def
	}
	v, err := strconv.ParseFloat(f[i], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func intField(f []string, i int, def int) int {
	if i >= len(f) {
		return def
	}
	if v, err := strconv.Atoi(f[i]); err == nil {
		return v
	}
	v, err := strconv.ParseFloat(f[i], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return def
	}
	return int(math.Round(v))
}
