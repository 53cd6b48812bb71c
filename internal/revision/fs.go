package revision

import (
	"os"
	"path/filepath"
)

// FileSystem is the optional capability used to resolve references to files that are not
// part of the current batch. Names are host paths below the root directory.
type FileSystem interface {
	Exists(name string) bool
	ReadFile(name string) ([]byte, error)
}

// OSFileSystem reads from the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Exists(name string) bool {
	info, err := os.Stat(filepath.Clean(name))
	return err == nil && info.Mode().IsRegular()
}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Clean(name))
}
