// Package workspace stores the files a build generates for a project.
//
// A Dir is rooted at the project's output directory. Every path handed to it
// is relative to that root; paths that would escape it are rejected. Writes
// go through fsutil.AtomicWrite, so a crash never leaves a half-written file
// behind.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, internal/fsutil, internal/ctxutil, std lib
//   - MUST NOT import: internal/task, internal/handler, internal/memory, internal/cli
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/mrz1836/forge/internal/ctxutil"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/fsutil"
)

// validNameRegex matches valid project names (alphanumeric, dash, underscore, dot).
var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// FS is the file access the handlers need.
type FS interface {
	// Root is the absolute project directory.
	Root() string

	// Read returns the file content and whether it exists.
	Read(ctx context.Context, path string) (string, bool, error)

	// Write creates or replaces the file, creating parent directories.
	Write(ctx context.Context, path, content string) error
}

// Dir implements FS on the local filesystem.
type Dir struct {
	root string
}

// New creates a Dir rooted at root. The directory is created lazily on the
// first write.
func New(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory %q: %w", root, err)
	}
	return &Dir{root: abs}, nil
}

// ValidateName reports whether name can be used as a project directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("project name: %w", forgeerrors.ErrEmptyValue)
	}
	if !validNameRegex.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("project name %q must start with a letter or digit and use only letters, digits, '.', '_' or '-': %w",
			name, forgeerrors.ErrValidation)
	}
	return nil
}

// Root implements FS.
func (d *Dir) Root() string { return d.root }

func (d *Dir) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("path %q escapes the project directory: %w", path, forgeerrors.ErrValidation)
	}
	return filepath.Join(d.root, clean), nil
}

// Read implements FS.
func (d *Dir) Read(ctx context.Context, path string) (string, bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", false, err
	}
	full, err := d.resolve(path)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(full) //#nosec G304 -- path is confined to the project root
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}

// Write implements FS.
func (d *Dir) Write(ctx context.Context, path, content string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), fsutil.DirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := fsutil.AtomicWrite(full, []byte(content), fsutil.FilePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// List returns every regular file under the root as a slash-separated
// relative path, sorted. A missing root yields an empty list.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == d.root {
				return filepath.SkipAll
			}
			return err
		}
		if cerr := ctxutil.Canceled(ctx); cerr != nil {
			return cerr
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}
	sort.Strings(files)
	return files, nil
}

var _ FS = (*Dir)(nil)
