package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// envFiles are loaded in order; variables already set in the process win.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every env file present in dir and returns the ones it loaded.
// Missing files are skipped; a file that exists but cannot be parsed is an error.
func loadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, errors.WrapError(err, errors.CategoryConfig, "failed to load environment file").
				WithContext("path", p).
				UserAction().
				Build()
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
