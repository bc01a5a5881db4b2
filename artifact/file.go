package artifact

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"ideaforge/config"
)

// FileStore keeps artifacts as markdown files. The default session uses the
// flat layout dir/<name>; other sessions live under dir/sessions/<id>/<name>.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the base directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("create artifact dir", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(session, name string) string {
	if session == config.DefaultSession {
		return filepath.Join(s.dir, name)
	}
	return filepath.Join(s.dir, "sessions", session, name)
}

// Read returns the artifact content
func (s *FileStore) Read(_ context.Context, session, name string) (string, error) {
	if err := checkKey(session, name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path(session, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", notFound(session, name)
	}
	if err != nil {
		return "", storageErr("read artifact", err)
	}
	return string(data), nil
}

// Write replaces the artifact through a temp file and rename, so readers see
// either the old or the new document.
func (s *FileStore) Write(_ context.Context, session, name, content string) error {
	if err := checkKey(session, name); err != nil {
		return err
	}
	target := s.path(session, name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return storageErr("create session dir", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+name+".*")
	if err != nil {
		return storageErr("create temp artifact", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return storageErr("write artifact", err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("close artifact", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return storageErr("rename artifact", err)
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error { return nil }
