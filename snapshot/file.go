package snapshot

import (
	"context"
	"os"
	"path/filepath"
)

// Extension is the file extension of the compressed form. Uncompressed
// snapshots use .json.
const Extension = ".s78"

// Load reads and decodes a snapshot file in either form
func Load(file string) (*Snapshot, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Save writes the snapshot to file, compressed if requested. The file is
// replaced atomically.
func Save(file string, s *Snapshot, compressed bool) error {
	b, err := encode(s, compressed)
	if err != nil {
		return err
	}
	return WriteAtomic(file, b)
}

func encode(s *Snapshot, compressed bool) ([]byte, error) {
	if compressed {
		return s.MarshalBinary()
	}
	return s.Encode()
}

// WriteAtomic writes b to a temporary file alongside file and renames it
// into place, so readers only ever see the old or the new contents
func WriteAtomic(file string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}

	if info, err := os.Stat(file); err == nil {
		_ = os.Chmod(name, info.Mode())
	}

	if err := os.Rename(name, file); err != nil {
		os.Remove(name)
		return err
	}

	return nil
}

// SaveAsync encodes the snapshot straight away, so later changes to s are
// not saved, then compresses and writes it in the background. The returned
// channel receives the result. If ctx is cancelled before the file is
// renamed into place nothing is written.
func SaveAsync(ctx context.Context, file string, s *Snapshot, compressed bool) <-chan error {
	done := make(chan error, 1)

	b, err := s.Encode()
	if err != nil {
		done <- err
		close(done)
		return done
	}

	go func() {
		defer close(done)

		if compressed {
			if b, err = compress(b); err != nil {
				done <- err
				return
			}
		}

		if err := ctx.Err(); err != nil {
			done <- err
			return
		}

		done <- WriteAtomic(file, b)
	}()

	return done
}

// Result is the outcome of LoadAsync
type Result struct {
	Snapshot *Snapshot
	Err      error
}

// LoadAsync reads, decompresses and decodes a snapshot in the background
func LoadAsync(ctx context.Context, file string) <-chan Result {
	done := make(chan Result, 1)

	go func() {
		defer close(done)

		s, err := Load(file)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			done <- Result{Err: err}
			return
		}
		done <- Result{Snapshot: s}
	}()

	return done
}
