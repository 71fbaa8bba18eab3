package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName is returned for names that would escape the storage area.
var ErrInvalidName = errors.New("invalid file name")

type Storage interface {
	Put(ctx context.Context, name string, data io.Reader) error
	Open(ctx context.Context, name string) (*os.File, error)
	Delete(ctx context.Context, name string) error
	Stat(ctx context.Context, name string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Path(name string) string
}

// Entry describes one file in a storage area.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

var _ Storage = (*LocalStorage)(nil)

// LocalStorage is a flat directory on local disk. Writes land in a hidden
// temporary file first and are renamed into place, so readers never see a
// partially written file under its final name.
type LocalStorage struct {
	name string
	dir  string
}

func NewLocalStorage(name, dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", name, err)
	}
	return &LocalStorage{name: name, dir: dir}, nil
}

func (s *LocalStorage) Name() string { return s.name }

func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *LocalStorage) Put(ctx context.Context, name string, data io.Reader) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, name string) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return os.Open(s.Path(name))
}

// Delete removes name. A file that is already gone is reported as
// fs.ErrNotExist so callers can tell it apart from real failures.
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Stat reads the current size and modification time of name.
func (s *LocalStorage) Stat(ctx context.Context, name string) (Entry, error) {
	if err := ValidateName(name); err != nil {
		return Entry{}, err
	}
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return Entry{}, fmt.Errorf("stat %s: %w", name, fs.ErrNotExist)
	}
	return Entry{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *LocalStorage) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return entries, nil
}

func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
