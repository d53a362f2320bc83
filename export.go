package sprite7800

import (
	"github.com/bodgit/sprite7800/snapshot"
)

// exportSnapshot writes the assembly source for every display mode used in
// s next to file
func (w *Workspace) exportSnapshot(file string, s *snapshot.Snapshot) error {
	_, err := w.write(file, s)
	return err
}

func (w *Workspace) write(file string, s *snapshot.Snapshot) ([]string, error) {
	p, err := OpenProject(s, w.config)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	exports := p.Export(w.options)

	files := make([]string, 0, len(exports))
	for _, e := range exports {
		out := ExportFilename(file, e.Mode, len(exports) == 1)
		for _, warning := range e.Result.Warnings {
			w.logger.Printf("%s: %s\n", out, warning)
		}
		if err := snapshot.WriteAtomic(out, []byte(e.Result.Text)); err != nil {
			return nil, err
		}
		w.logger.Printf("Wrote \"%s\"\n", out)
		files = append(files, out)
	}

	return files, nil
}

// Export loads the project file and writes its assembly source alongside
// it. It returns the names of the files written.
func (w *Workspace) Export(file string) ([]string, error) {
	s, err := snapshot.Load(file)
	if err != nil {
		return nil, err
	}
	return w.write(file, s)
}
