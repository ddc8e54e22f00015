package transfer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Store performs the file operations of a scan session.
type Store struct {
	fs      billy.Filesystem
	tempDir string
	logger  *slog.Logger
}

// New creates a Store over fs. Scratch directories are created below
// os.TempDir().
func New(fs billy.Filesystem) *Store {
	return &Store{fs: fs, tempDir: os.TempDir()}
}

// NewNative creates a Store over the host filesystem.
func NewNative() *Store {
	return New(&NativeFS{})
}

// SetLogger sets the logger for move diagnostics.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Filesystem returns the underlying filesystem.
func (s *Store) Filesystem() billy.Filesystem {
	return s.fs
}

// IsDirDestination reports whether dest names a directory: it ends with a
// path separator or already exists as a directory.
func (s *Store) IsDirDestination(dest string) bool {
	if dest == "" {
		return false
	}
	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) {
		return true
	}
	info, err := s.fs.Stat(dest)
	return err == nil && info.IsDir()
}

// EnsureDir creates dir and any missing parents.
func (s *Store) EnsureDir(dir string) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("transfer: mkdir %q: %w", dir, err)
	}
	return nil
}

// ScratchDir creates a fresh private directory for device downloads.
func (s *Store) ScratchDir(prefix string) (string, error) {
	name, err := util.TempDir(s.fs, s.tempDir, prefix)
	if err != nil {
		return "", fmt.Errorf("transfer: tempdir: %w", err)
	}
	return name, nil
}

// RemoveAll removes path and everything below it.
func (s *Store) RemoveAll(path string) error {
	return util.RemoveAll(s.fs, path)
}

// Move relocates src to dst, replacing dst if it exists, and returns the
// number of bytes moved. Parent directories of dst are created. When a
// rename is not possible (for example across devices) the file is copied
// and the source removed.
func (s *Store) Move(src, dst string) (int64, error) {
	info, err := s.fs.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("transfer: source %q: %w", src, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("transfer: source %q is a directory", src)
	}

	if dir := filepath.Dir(dst); dir != "." {
		if err := s.EnsureDir(dir); err != nil {
			return 0, err
		}
	}
	if existing, err := s.fs.Stat(dst); err == nil {
		if existing.IsDir() {
			return 0, fmt.Errorf("transfer: destination %q is a directory", dst)
		}
		if err := s.fs.Remove(dst); err != nil {
			return 0, fmt.Errorf("transfer: replace %q: %w", dst, err)
		}
	}

	if err := s.fs.Rename(src, dst); err == nil {
		return info.Size(), nil
	} else if s.logger != nil {
		s.logger.Debug("transfer: rename failed, copying", "src", src, "dst", dst, "error", err)
	}

	n, err := s.copyFile(src, dst)
	if err != nil {
		return 0, err
	}
	if err := s.fs.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		return n, fmt.Errorf("transfer: remove source %q: %w", src, err)
	}
	return n, nil
}

func (s *Store) copyFile(src, dst string) (int64, error) {
	in, err := s.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("transfer: open %q: %w", src, err)
	}
	defer in.Close()

	out, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("transfer: create %q: %w", dst, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("transfer: copy %q to %q: %w", src, dst, err)
	}
	return n, nil
}

// Sniff returns the detected MIME type of the file at path.
func (s *Store) Sniff(path string) (string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("transfer: open %q: %w", path, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("transfer: detect %q: %w", path, err)
	}
	return mt.String(), nil
}

// PagePath returns the destination for the n-th document (1-based) of a
// multi-page scan into the single file dst. Page 1 is dst itself; later
// pages get a numeric suffix before the extension.
func PagePath(dst string, n int) string {
	if n <= 1 {
		return dst
	}
	ext := filepath.Ext(dst)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(dst, ext), n, ext)
}

// FreeName returns name, or the first "<name>_<n>" for which
// "<dir>/<name>_<n><ext>" does not exist in fs. Scans into a shared
// directory use it so that earlier documents are not overwritten.
func FreeName(fs billy.Filesystem, dir, name, ext string) string {
	candidate := name
	for n := 1; ; n++ {
		if _, err := fs.Stat(filepath.Join(dir, candidate+ext)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
}
