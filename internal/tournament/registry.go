package tournament

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed formats/*.yaml
var builtinFormats embed.FS

var ErrNoFormat = errors.New("no format for event and game")

// LoadFormats reads every *.yaml file at the root of fsys.
func LoadFormats(fsys fs.FS) ([]Format, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	formats := make([]Format, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var f Format
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if f.ID == "" {
			f.ID = name[:len(name)-len(path.Ext(name))]
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Registry holds the ready-to-use tournaments for every known format.
type Registry struct {
	tournaments []*Tournament
	byID        map[string]*Tournament
}

func NewRegistry(formats []Format) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Tournament, len(formats))}
	for _, f := range formats {
		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("format %s defined twice", f.ID)
		}
		t, err := New(f)
		if err != nil {
			return nil, err
		}
		r.tournaments = append(r.tournaments, t)
		r.byID[f.ID] = t
	}
	return r, nil
}

// Builtin loads the formats compiled into the binary.
func Builtin() (*Registry, error) {
	sub, err := fs.Sub(builtinFormats, "formats")
	if err != nil {
		return nil, err
	}
	return FromFS(sub)
}

// LoadRegistry reads formats from dir, or the built-in ones when dir is empty.
func LoadRegistry(dir string) (*Registry, error) {
	if dir == "" {
		return Builtin()
	}
	return FromFS(os.DirFS(dir))
}

func FromFS(fsys fs.FS) (*Registry, error) {
	formats, err := LoadFormats(fsys)
	if err != nil {
		return nil, err
	}
	return NewRegistry(formats)
}

func (r *Registry) Get(id string) (*Tournament, bool) {
	t, ok := r.byID[id]
	return t, ok
}

func (r *Registry) All() []*Tournament {
	return r.tournaments
}

// Resolve picks the format whose match rule fits the event and game best.
// An exact id beats a wildcard; ties go to the first format loaded.
func (r *Registry) Resolve(eventID, gameID string) (*Tournament, error) {
	var best *Tournament
	bestScore := -1
	for _, t := range r.tournaments {
		if s := t.Format.Match.score(eventID, gameID); s > bestScore {
			best, bestScore = t, s
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%s/%s: %w", eventID, gameID, ErrNoFormat)
	}
	return best, nil
}
