package sprite7800

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sprite7800/snapshot"
)

// maxFileSize is the largest project file considered
const maxFileSize = 16 << (10 * 2)

// isProjectFile reports whether the name looks like a project file
func isProjectFile(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case snapshot.Extension, ".json":
		return true
	}
	return false
}

// fingerprint reads file once, returning the SHA-1 of its contents together
// with the decoded snapshot
func fingerprint(file string) (string, *snapshot.Snapshot, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return "", nil, err
	}

	sha := fmt.Sprintf("%X", sha1.Sum(b))

	s, err := snapshot.Decode(b)
	if err != nil {
		return sha, nil, err
	}

	return sha, s, nil
}

// isInvalid reports whether err means the file is not a usable snapshot, as
// opposed to not being readable at all
func isInvalid(err error) bool {
	var fe *snapshot.FieldError
	return errors.As(err, &fe) || errors.Is(err, snapshot.ErrUnsupportedVersion) || errors.Is(err, snapshot.ErrMalformed)
}
