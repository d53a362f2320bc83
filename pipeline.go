package sprite7800

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const numWorkers = 10

func (w *Workspace) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, this includes
			// temporary files left behind by an interrupted save
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if !isProjectFile(file) || info.Size() > maxFileSize {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (w *Workspace) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := w.process(file, false); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// process catalogues file and, if enabled, writes its assembly source.
// Files that are not valid snapshots are logged and skipped. Unchanged
// files are skipped unless force is set.
func (w *Workspace) process(file string, force bool) error {
	sha, s, err := fingerprint(file)
	if err != nil {
		if isInvalid(err) {
			w.logger.Printf("Skipping \"%s\": %s\n", file, err)
			return nil
		}
		return err
	}

	if !force {
		old, err := w.db.SnapshotSHA1(file)
		if err != nil {
			return err
		}
		if old == sha {
			w.logger.Printf("Unchanged \"%s\"\n", file)
			return nil
		}
	}

	n, err := w.db.AddSnapshot(file, sha, s)
	if err != nil {
		return err
	}
	w.logger.Printf("Catalogued \"%s\", %d objects\n", file, n)

	if !w.export || n == 0 {
		return nil
	}

	return w.exportSnapshot(file, s)
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path cataloguing every project file found
func (w *Workspace) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := w.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := w.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}

// Import catalogues a single project file, even if it is unchanged
func (w *Workspace) Import(file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	return w.process(abs, true)
}
