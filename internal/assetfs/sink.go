package assetfs

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

// DirSink writes revisioned outputs below OutputDir, mirroring their root-relative paths.
type DirSink struct {
	OutputDir string

	mu      sync.Mutex
	written []string
}

// NewDirSink returns a sink writing into dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{OutputDir: dir}
}

// Emit writes one output file.
func (s *DirSink) Emit(ctx context.Context, out revision.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(s.OutputDir, filepath.FromSlash(out.RelPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", filepath.Dir(target)).
			Build()
	}
	if err := os.WriteFile(target, out.Content, 0o644); err != nil { //nolint:gosec // published web assets
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", target).
			Build()
	}
	s.mu.Lock()
	s.written = append(s.written, target)
	s.mu.Unlock()
	return nil
}

// Written returns the files written so far.
func (s *DirSink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}
