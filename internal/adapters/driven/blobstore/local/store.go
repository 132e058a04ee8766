// Package local provides a StorageConnector over the local file system.
// Each repository is a directory under a common root.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageConnector = (*Store)(nil)

// rename is swapped in tests to simulate rename failures.
var rename = os.Rename

// Store keeps artifacts at <root>/<repository>/<artifact path>.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. The root must exist.
func NewStore(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: storage root %s: %w", domain.ErrStorageUnavailable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: storage root %s is not a directory", domain.ErrInvalidInput, root)
	}
	return &Store{root: root}, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// resolve returns the file path for an artifact, rejecting paths that
// escape the repository directory.
func (s *Store) resolve(repository, path string) (string, error) {
	if repository == "" || strings.ContainsAny(repository, `/\`) || repository == "." || repository == ".." {
		return "", fmt.Errorf("%w: repository %q", domain.ErrInvalidInput, repository)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: artifact path %q", domain.ErrInvalidInput, path)
	}
	return filepath.Join(s.root, repository, clean), nil
}

// Exists reports whether path is a regular file in repository.
func (s *Store) Exists(_ context.Context, repository, path string) (bool, error) {
	p, err := s.resolve(repository, path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return info.Mode().IsRegular(), nil
}

// Move renames path from the source repository into the target
// repository, copying when the two are on different devices.
func (s *Store) Move(ctx context.Context, source, target, path string) error {
	src, err := s.resolve(source, path)
	if err != nil {
		return err
	}
	dst, err := s.resolve(target, path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s in %s", domain.ErrArtifactNotFound, path, source)
	}
	if info, err := os.Stat(filepath.Join(s.root, target)); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: repository %s", domain.ErrNotFound, target)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	if err := rename(src, dst); err != nil {
		// Only a move across file systems falls back to copying
		if !errors.Is(err, syscall.EXDEV) {
			return fmt.Errorf("moving %s: %w", path, err)
		}
		return copyAndRemove(ctx, src, dst)
	}
	return nil
}

// copyAndRemove moves a file across devices.
func copyAndRemove(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".partial"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalising %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing %s: %w", src, err)
	}
	return nil
}
