/*
Package sprite7800 is a library for editing and exporting graphics for the
Atari 7800 MARIA graphics chip.

A Workspace ties together a catalogue of project files with the export
options used when generating assembly source from them.
*/
package sprite7800

import (
	"log"

	"github.com/bodgit/sprite7800/canvas"
	"github.com/bodgit/sprite7800/codegen"
)

// Workspace is a catalogue of project files together with export settings
type Workspace struct {
	db     *Catalog
	logger *log.Logger

	options codegen.Options
	config  canvas.Config
	export  bool
}

// New opens the catalogue in file, creating it if necessary
func New(file string, logger *log.Logger) (*Workspace, error) {
	db, err := NewCatalog(file)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		db:      db,
		logger:  logger,
		options: codegen.DefaultOptions(),
		config:  canvas.DefaultConfig(),
	}, nil
}

// Close closes the catalogue
func (w *Workspace) Close() error {
	return w.db.Close()
}

// Catalog returns the catalogue of the workspace
func (w *Workspace) Catalog() *Catalog {
	return w.db
}

// SetOptions changes the options used to generate assembly source
func (w *Workspace) SetOptions(opts codegen.Options) {
	w.options = opts
}

// SetExport controls whether Scan and Watch write assembly source next to
// each project file they process
func (w *Workspace) SetExport(export bool) {
	w.export = export
}
