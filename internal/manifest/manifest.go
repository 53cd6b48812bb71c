package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

// Format selects the manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// RevManifest records one revision run: which original path became which revisioned path.
type RevManifest struct {
	ID         string    `json:"id" yaml:"id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Algorithm  string    `json:"algorithm" yaml:"algorithm"`
	HashLength int       `json:"hash_length" yaml:"hash_length"`
	Root       string    `json:"root" yaml:"root"`
	Duration   int64     `json:"duration_ms" yaml:"duration_ms"`
	Assets     []Asset   `json:"assets" yaml:"assets"`
}

// Asset is one manifest entry.
type Asset struct {
	Original   string `json:"original" yaml:"original"`
	Revisioned string `json:"revisioned" yaml:"revisioned"`
	Digest     string `json:"digest" yaml:"digest"`
	Ignored    bool   `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

// New starts a manifest with a fresh run id.
func New(algorithm string, hashLength int, now time.Time) *RevManifest {
	return &RevManifest{
		ID:         uuid.NewString(),
		Timestamp:  now.UTC(),
		Algorithm:  algorithm,
		HashLength: hashLength,
	}
}

// Record adds the outputs of a finished run and keeps assets sorted by original path.
func (m *RevManifest) Record(res *revision.Result, elapsed time.Duration) {
	m.Root = res.Root
	m.Duration = elapsed.Milliseconds()
	for _, out := range res.Outputs {
		m.Assets = append(m.Assets, Asset{
			Original:   out.OriginalPath,
			Revisioned: out.RelPath,
			Digest:     out.Digest,
			Ignored:    out.Ignored,
		})
	}
	sort.Slice(m.Assets, func(i, j int) bool {
		return m.Assets[i].Original < m.Assets[j].Original
	})
}

// Mapping returns the flat original-to-revisioned map used by template helpers.
func (m *RevManifest) Mapping() map[string]string {
	out := make(map[string]string, len(m.Assets))
	for _, a := range m.Assets {
		out[a.Original] = a.Revisioned
	}
	return out
}

// Lookup returns the revisioned path for an original root-relative path.
func (m *RevManifest) Lookup(original string) (string, bool) {
	i := sort.Search(len(m.Assets), func(i int) bool { return m.Assets[i].Original >= original })
	if i < len(m.Assets) && m.Assets[i].Original == original {
		return m.Assets[i].Revisioned, true
	}
	return "", false
}

// Hash is a digest of the asset entries only, so two runs over identical inputs compare
// equal regardless of run id and timing.
func (m *RevManifest) Hash() (string, error) {
	data, err := json.Marshal(m.Assets)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Encode serializes the manifest in the given format.
func (m *RevManifest) Encode(format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(m)
	case FormatJSON, "":
		data, err = json.MarshalIndent(m, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		return nil, errors.ValidationError("unsupported manifest format").
			WithContext("format", string(format)).
			Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "marshal manifest").Build()
	}
	return data, nil
}

// Decode parses a manifest written by Encode.
func Decode(data []byte, format Format) (*RevManifest, error) {
	var m RevManifest
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "unmarshal manifest").Build()
	}
	return &m, nil
}

// Write encodes the manifest and replaces filename atomically.
func (m *RevManifest) Write(filename string, format Format) error {
	data, err := m.Encode(format)
	if err != nil {
		return err
	}
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create manifest directory").
			WithContext("path", dir).
			Build()
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create manifest").
			WithContext("path", filename).
			Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "write manifest").
			WithContext("path", filename).
			Build()
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write manifest").
			WithContext("path", filename).
			Build()
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "replace manifest").
			WithContext("path", filename).
			Build()
	}
	return nil
}

// Read loads a manifest from disk.
func Read(filename string, format Format) (*RevManifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read manifest").
			WithContext("path", filename).
			Build()
	}
	return Decode(data, format)
}
