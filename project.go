package sprite7800

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bodgit/sprite7800/canvas"
	"github.com/bodgit/sprite7800/codegen"
	"github.com/bodgit/sprite7800/mode"
	"github.com/bodgit/sprite7800/palette"
	"github.com/bodgit/sprite7800/snapshot"
)

// Group is a named collection of objects and nested groups
type Group struct {
	Name    string
	Objects []*canvas.Canvas
	Groups  []*Group
}

// Project is an open snapshot with every object loaded as a canvas. All
// canvases share the palette bank of the project.
type Project struct {
	Television string
	Bank       *palette.Bank
	Groups     []*Group
}

// OpenProject loads every object of s. The first object that cannot be
// loaded aborts the whole project.
func OpenProject(s *snapshot.Snapshot, cfg canvas.Config) (*Project, error) {
	p := &Project{
		Television: s.Television,
		Bank:       s.Bank(),
	}

	groups, err := openGroups(s.Groups, p.Bank, cfg)
	if err != nil {
		return nil, err
	}
	p.Groups = groups

	return p, nil
}

func openGroups(in []snapshot.Group, bank *palette.Bank, cfg canvas.Config) ([]*Group, error) {
	out := make([]*Group, 0, len(in))
	for _, sg := range in {
		g := &Group{Name: sg.Name}
		out = append(out, g)
		for _, o := range sg.Objects {
			c, err := canvas.FromSnapshot(o, bank, cfg)
			if err != nil {
				closeGroups(out)
				return nil, fmt.Errorf("%s/%s: %w", sg.Name, o.Name, err)
			}
			g.Objects = append(g.Objects, c)
		}
		groups, err := openGroups(sg.Groups, bank, cfg)
		if err != nil {
			closeGroups(out)
			return nil, err
		}
		g.Groups = groups
	}
	return out, nil
}

func closeGroups(groups []*Group) {
	for _, g := range groups {
		for _, c := range g.Objects {
			c.Close()
		}
		closeGroups(g.Groups)
	}
}

// Close releases every canvas of the project
func (p *Project) Close() {
	closeGroups(p.Groups)
}

// Snapshot returns the project as a snapshot
func (p *Project) Snapshot() *snapshot.Snapshot {
	s := snapshot.Empty()
	s.Television = p.Television
	s.SetBank(p.Bank)
	s.Groups = snapshotGroups(p.Groups)
	return s
}

func snapshotGroups(in []*Group) []snapshot.Group {
	out := make([]snapshot.Group, 0, len(in))
	for _, g := range in {
		sg := snapshot.Group{
			Name:    g.Name,
			Objects: make([]snapshot.Object, 0, len(g.Objects)),
		}
		for _, c := range g.Objects {
			sg.Objects = append(sg.Objects, c.Snapshot())
		}
		if len(g.Groups) > 0 {
			sg.Groups = snapshotGroups(g.Groups)
		}
		out = append(out, sg)
	}
	return out
}

// Walk calls fn for every object, depth-first in project order. path holds
// the names of the enclosing groups.
func (p *Project) Walk(fn func(path []string, c *canvas.Canvas) error) error {
	return walkGroups(p.Groups, nil, fn)
}

func walkGroups(groups []*Group, path []string, fn func([]string, *canvas.Canvas) error) error {
	for _, g := range groups {
		path := append(path[:len(path):len(path)], g.Name)
		for _, c := range g.Objects {
			if err := fn(path, c); err != nil {
				return err
			}
		}
		if err := walkGroups(g.Groups, path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Objects returns every object in project order
func (p *Project) Objects() []*canvas.Canvas {
	var objs []*canvas.Canvas
	_ = p.Walk(func(_ []string, c *canvas.Canvas) error {
		objs = append(objs, c)
		return nil
	})
	return objs
}

// Export is the generated source for the objects of one display mode
type Export struct {
	Mode   mode.Mode
	Result *codegen.Result
}

// Export generates source for every object, one result per display mode in
// the order the modes are defined. Objects with the same mode keep their
// project order.
func (p *Project) Export(opts codegen.Options) []Export {
	byMode := make(map[string][]codegen.Object)
	for _, c := range p.Objects() {
		m := c.Mode()
		byMode[m.Name()] = append(byMode[m.Name()], codegen.Object{
			Name:    c.Name(),
			Grid:    c.Grid(),
			Palette: c.PaletteRef(),
		})
	}

	var exports []Export
	for _, m := range mode.All() {
		objs, ok := byMode[m.Name()]
		if !ok {
			continue
		}
		exports = append(exports, Export{
			Mode:   m,
			Result: codegen.Generate(objs, m, p.Bank, opts),
		})
	}
	return exports
}

// ExportFilename returns the name of the file the source for mode m is
// written to. Projects using a single mode write to one file named after
// the project; otherwise the mode is appended.
func ExportFilename(file string, m mode.Mode, single bool) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	if single {
		return base + ".asm"
	}
	return base + "_" + strings.ToLower(m.Name()) + ".asm"
}
