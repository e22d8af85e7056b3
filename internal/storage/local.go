// Package storage persists deployment file sets: a local static root served
// directly, plus an optional object-store mirror.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"foliohost/pkg/domain"
)

// ErrBadFilename rejects file names that would escape the site directory.
var ErrBadFilename = errors.New("unsafe deployment filename")

// LocalStore keeps one directory per active subdomain under a static root.
// The filesystem is abstracted so tests run against an in-memory fs.
type LocalStore struct {
	fs billy.Filesystem
}

// NewLocalStore roots the store at a directory on the host filesystem.
func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("static root path is required")
	}
	return &LocalStore{fs: osfs.New(root)}, nil
}

// NewLocalStoreFS wraps an existing filesystem (in-memory fs in tests).
func NewLocalStoreFS(fsys billy.Filesystem) *LocalStore {
	return &LocalStore{fs: fsys}
}

// WriteSite persists the complete file set under the subdomain directory and
// verifies every file landed before reporting success. Nothing is considered
// published unless all files are written and readable back at full size.
func (s *LocalStore) WriteSite(subdomain string, files domain.DeploymentFileSet) error {
	if len(files) == 0 {
		return errors.New("empty deployment file set")
	}
	if _, ok := files["index.html"]; !ok {
		return errors.New("deployment file set missing index.html")
	}
	for name := range files {
		if !safeFilename(name) {
			return fmt.Errorf("%w: %q", ErrBadFilename, name)
		}
	}

	if err := s.fs.MkdirAll(subdomain, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}
	for name, content := range files {
		target := path.Join(subdomain, name)
		if err := util.WriteFile(s.fs, target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	for name, content := range files {
		target := path.Join(subdomain, name)
		info, err := s.fs.Stat(target)
		if err != nil {
			return fmt.Errorf("verify %s: %w", target, err)
		}
		if info.Size() != int64(len(content)) {
			return fmt.Errorf("verify %s: wrote %d bytes, expected %d", target, info.Size(), len(content))
		}
	}

	// Republish can shrink the file set (a case study removed). Stale pages
	// are pruned only after the new set verified, best-effort.
	entries, err := s.fs.ReadDir(subdomain)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if _, keep := files[entry.Name()]; keep {
			continue
		}
		_ = s.fs.Remove(path.Join(subdomain, entry.Name()))
	}
	return nil
}

// RemoveSite deletes the subdomain directory. Missing directories are not an
// error so unpublish and rename cleanup stay idempotent.
func (s *LocalStore) RemoveSite(subdomain string) error {
	if _, err := s.fs.Stat(subdomain); err != nil {
		return nil
	}
	if err := util.RemoveAll(s.fs, subdomain); err != nil {
		return fmt.Errorf("remove site dir: %w", err)
	}
	return nil
}

// ReadFile returns one stored file for serving.
func (s *LocalStore) ReadFile(subdomain, name string) ([]byte, error) {
	if !safeFilename(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
	data, err := util.ReadFile(s.fs, path.Join(subdomain, name))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", subdomain, name, err)
	}
	return data, nil
}

// SiteExists reports whether a directory exists for the subdomain.
func (s *LocalStore) SiteExists(subdomain string) bool {
	_, err := s.fs.Stat(subdomain)
	return err == nil
}

// safeFilename permits only flat names like index.html or
// case-study-<id>.html; path separators and dot segments are rejected.
func safeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	return !strings.HasPrefix(name, ".")
}
