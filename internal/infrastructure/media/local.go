// Package media stores uploaded files on local disk.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/inkpress/blogkit/internal/core/ports"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/uploads"

var _ ports.MediaStore = (*LocalStore)(nil)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes r under a generated name. Only a short alphanumeric extension
// of the client filename is kept.
func (s *LocalStore) Save(_ context.Context, filename string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("media dir: %w", err)
	}

	name := uuid.NewString()
	if ext := strings.ToLower(filepath.Ext(filename)); safeExt.MatchString(ext) {
		name += ext
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("media create: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", 0, fmt.Errorf("media write: %w", err)
	}
	return URLPrefix + "/" + name, n, nil
}
