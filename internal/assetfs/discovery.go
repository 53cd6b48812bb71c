// Package assetfs connects the revision engine to the local disk: it walks a root
// directory to produce descriptors and writes revisioned outputs to an output directory.
package assetfs

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

// Discovery finds asset files below Root.
type Discovery struct {
	Root    string
	Include []string // Lower-case extensions with leading dot; empty accepts every file
	Skip    []string // Directories never descended into, such as the output directory
}

// NewDiscovery returns a Discovery over root.
func NewDiscovery(root string, include []string, skip ...string) *Discovery {
	return &Discovery{Root: root, Include: include, Skip: skip}
}

// Paths walks Root and returns the matching absolute file paths in lexical order. Hidden
// files and directories are skipped.
func (d *Discovery) Paths(ctx context.Context) ([]string, error) {
	root := d.absRoot()
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotFound, "root directory not found").
			WithContext("root_dir", d.Root).
			UserAction().
			Fatal().
			Build()
	}
	if !info.IsDir() {
		return nil, errors.ValidationError("root is not a directory").
			WithContext("root_dir", d.Root).
			Build()
	}

	skip := make(map[string]bool, len(d.Skip))
	for _, s := range d.Skip {
		if abs, err := filepath.Abs(s); err == nil {
			skip[abs] = true
		}
	}

	var paths []string
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != root && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if abs, err := filepath.Abs(p); err == nil && skip[abs] && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !d.accepts(entry.Name()) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk root directory").
			WithContext("root_dir", d.Root).
			Fatal().
			Build()
	}
	sort.Strings(paths)
	return paths, nil
}

// absRoot makes descriptor paths absolute so they can be related to the root.
func (d *Discovery) absRoot() string {
	root := filepath.Clean(d.Root)
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

func (d *Discovery) accepts(name string) bool {
	if len(d.Include) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, inc := range d.Include {
		if inc == ext {
			return true
		}
	}
	return false
}

// Source walks Root and streams descriptors from a background goroutine. A read failure
// is delivered on the error channel before the descriptor channel closes, so the
// collector discards everything it buffered.
func (d *Discovery) Source(ctx context.Context) revision.Source {
	descs := make(chan revision.Descriptor)
	errs := make(chan error, 1)
	go func() {
		defer close(descs)
		paths, err := d.Paths(ctx)
		if err != nil {
			errs <- err
			return
		}
		base := d.absRoot()
		for _, p := range paths {
			content, err := os.ReadFile(p)
			if err != nil {
				errs <- errors.WrapError(err, errors.CategoryFileSystem, "failed to read asset").
					WithContext("path", p).
					Fatal().
					Build()
				return
			}
			select {
			case descs <- revision.Descriptor{Path: p, Base: base, Content: content}:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		slog.Debug("Discovery complete", logfields.Root(base), logfields.Count(len(paths)))
	}()
	return revision.NewChannelSource(descs, errs)
}
