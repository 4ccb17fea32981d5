package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Local stores objects as files in a directory that the HTTP server exposes
// under PublicPath.
type Local struct {
	dir        string
	publicPath string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, publicPath string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, publicPath: publicPath}, nil
}

func (l *Local) Backend() string { return "local" }

// Dir is the directory files are written to.
func (l *Local) Dir() string { return l.dir }

// Put writes to a temp file and renames it into place, so a half-written
// upload is never served.
func (l *Local) Put(_ context.Context, name, _ string, r io.Reader) error {
	if err := checkName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, name)); err != nil {
		return fmt.Errorf("publish file: %w", err)
	}
	return nil
}

// SignedURL returns the public path of the file. Local files are served
// without expiry, so ttl is unused.
func (l *Local) SignedURL(_ context.Context, name string, _ time.Duration) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(l.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrObjectNotFound
		}
		return "", err
	}
	return l.publicPath + "/" + name, nil
}

func (l *Local) Delete(_ context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
