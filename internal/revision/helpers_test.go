package revision

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

const testRoot = "/site"

func desc(rel, content string) Descriptor {
	return Descriptor{Path: testRoot + "/" + rel, Base: testRoot, Content: []byte(content)}
}

func res(rel, content string) *Resource {
	return newResource(testRoot+"/"+rel, rel, []byte(content))
}

// b3 digests the concatenation of parts.
func b3(parts ...[]byte) []byte {
	h := blake3.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(nil)
}

func hexOf(b []byte) string {
	return hex.EncodeToString(b)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func byOriginal(t *testing.T, result *Result) map[string]Output {
	t.Helper()
	out := make(map[string]Output, len(result.Outputs))
	for _, o := range result.Outputs {
		out[o.OriginalPath] = o
	}
	return out
}

func revisionAll(t *testing.T, opts Options, descs ...Descriptor) map[string]Output {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	rv, err := New(opts)
	require.NoError(t, err)
	result, err := rv.Revision(t.Context(), descs)
	require.NoError(t, err)
	return byOriginal(t, result)
}

// memFS is an in-memory FileSystem keyed by slash paths.
type memFS struct {
	files   map[string][]byte
	readErr error
	reads   []string
}

func (m *memFS) Exists(name string) bool {
	_, ok := m.files[strings.ReplaceAll(name, `\`, "/")]
	return ok
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	m.reads = append(m.reads, name)
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[strings.ReplaceAll(name, `\`, "/")]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

var errUpstream = errors.New("upstream read failed")
