package source

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnresolved is returned when a texture path cannot be turned into a handle.
var ErrUnresolved = errors.New("texture not resolved")

// Handle is a lightweight reference to a texture owned by a Registry.
type Handle int

// NoHandle is the zero reference.
const NoHandle Handle = -1

// Texture describes a resolved texture. Only the header is read; pixels
// stay with the presentation layer.
type Texture struct {
	Path   string
	Width  int
	Height int
	// Page is the 1-based PDF page for textures addressed as file.pdf#N, 0 otherwise.
	Page int
}

// Resolver turns script texture paths into handles.
type Resolver interface {
	Resolve(path string) (Handle, error)
}

// Registry is a path-keyed texture arena. Sprites sharing a path share a
// handle.
type Registry struct {
	BaseDir string
	// Lenient accepts paths that do not exist on disk as zero-sized textures.
	Lenient bool

	textures []Texture
	index    map[string]Handle
	offline  bool
}

// NewRegistry creates a registry resolving paths relative to baseDir.
func NewRegistry(baseDir string) *Registry {
	return &Registry{
		BaseDir: baseDir,
		index:   make(map[string]Handle),
	}
}

// NewStatic creates a registry that never touches the disk.
func NewStatic() *Registry {
	r := NewRegistry("")
	r.Lenient = true
	r.offline = true
	return r
}

// Resolve returns the handle for path, loading its header on first use.
func (r *Registry) Resolve(path string) (Handle, error) {
	key := normalize(path)
	if key == "" {
		return NoHandle, fmt.Errorf("empty path: %w", ErrUnresolved)
	}
	if h, ok := r.index[key]; ok {
		return h, nil
	}
	if r.index == nil {
		r.index = make(map[string]Handle)
	}

	tex := Texture{Path: key}
	var err error
	if !r.offline {
		tex, err = r.load(key)
	}
	if err != nil {
		if !r.Lenient {
			return NoHandle, fmt.Errorf("%s: %v: %w", key, err, ErrUnresolved)
		}
		tex = Texture{Path: key}
	}

	h := Handle(len(r.textures))
	r.textures = append(r.textures, tex)
	r.index[key] = h
	return h, nil
}

// Texture returns the texture behind h.
func (r *Registry) Texture(h Handle) (Texture, bool) {
	if h < 0 || int(h) >= len(r.textures) {
		return Texture{}, false
	}
	return r.textures[h], true
}

// Len returns the number of distinct textures.
func (r *Registry) Len() int {
	return len(r.textures)
}

func (r *Registry) load(key string) (Texture, error) {
	file, page := splitPage(key)
	full := file
	if r.BaseDir != "" && !filepath.IsAbs(file) {
		full = filepath.Join(r.BaseDir, filepath.FromSlash(file))
	}

	if strings.HasSuffix(strings.ToLower(file), ".pdf") {
		return loadPDFPage(full, key, page)
	}

	f, err := os.Open(full)
	if err != nil {
		return Texture{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Texture{}, err
	}
	return Texture{Path: key, Width: cfg.Width, Height: cfg.Height}, nil
}

func loadPDFPage(full, key string, page int) (Texture, error) {
	if page < 1 {
		page = 1
	}
	doc, err := fitz.New(full)
	if err != nil {
		return Texture{}, err
	}
	defer doc.Close()

	if page > doc.NumPage() {
		return Texture{}, fmt.Errorf("page %d out of range (%d pages)", page, doc.NumPage())
	}
	rect, err := doc.Bound(page - 1)
	if err != nil {
		return Texture{}, err
	}
	return Texture{Path: key, Width: rect.Dx(), Height: rect.Dy(), Page: page}, nil
}

// normalize strips quotes and converts Windows separators so that the same
// texture written two ways maps to one handle.
func normalize(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"`)
	return strings.ReplaceAll(path, `\`, "/")
}

// splitPage separates "deck.pdf#3" into the file and the page number.
func splitPage(key string) (string, int) {
	i := strings.LastIndexByte(key, '#')
	if i < 0 {
		return key, 0
	}
	page, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return key, 0
	}
	return key[:i], page
}
