package assetfs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscoveryPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.html":       "<p>x</p>",
		"css/style.css":    "a{}",
		"img/logo.PNG":     "png",
		"notes.txt":        "skip",
		".hidden/x.css":    "skip",
		"css/.draft.css":   "skip",
		"dist/old.css":     "skip",
		"js/vendor/lib.js": "1",
	})

	d := NewDiscovery(root, []string{".html", ".css", ".png", ".js"}, filepath.Join(root, "dist"))
	paths, err := d.Paths(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"css/style.css", "img/logo.PNG", "index.html", "js/vendor/lib.js"}, relPaths(t, root, paths))
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), p)
	}
}

func TestDiscoveryAcceptsEverythingWithoutInclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "a", "b/c.bin": "c"})

	paths, err := NewDiscovery(root, nil).Paths(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b/c.bin"}, relPaths(t, root, paths))
}

func TestDiscoveryMissingRoot(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "nope"), nil).Paths(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = NewDiscovery(file, nil).Paths(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestRevisionDirectoryEndToEnd(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.html":    `<link href="css/style.css"><img src="/img/a.png">`,
		"css/style.css": `.a { background: url(../img/a.png); }`,
		"img/a.png":     "png",
		"favicon.ico":   "ico",
	})

	rv, err := revision.New(revision.Options{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	sink := NewDirSink(out)
	result, err := rv.Run(t.Context(), NewDiscovery(root, nil).Source(t.Context()), sink)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 4)
	assert.Len(t, sink.Written(), 4)

	outputs := make(map[string]revision.Output)
	for _, o := range result.Outputs {
		outputs[o.OriginalPath] = o
	}
	index := outputs["index.html"]
	data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(index.RelPath)))
	require.NoError(t, err)
	assert.Equal(t, string(index.Content), string(data))
	assert.Contains(t, string(data), `href="`+outputs["css/style.css"].RelPath+`"`)
	assert.Contains(t, string(data), `src="/`+outputs["img/a.png"].RelPath+`"`)

	_, err = os.Stat(filepath.Join(out, "favicon.ico"))
	require.NoError(t, err)
}

func TestSourceReportsWalkFailure(t *testing.T) {
	rv, err := revision.New(revision.Options{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	emitted := 0
	sink := revision.SinkFunc(func(_ context.Context, _ revision.Output) error {
		emitted++
		return nil
	})
	_, err = rv.Run(t.Context(), NewDiscovery(filepath.Join(t.TempDir(), "missing"), nil).Source(t.Context()), sink)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.Zero(t, emitted)
}
