package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

func TestBuildGraphResolution(t *testing.T) {
	index := res("index.html", `<link href="css/style.css"><a href="/view/main.html">m</a><img src="img/missing.png">`)
	style := res("css/style.css", `body { background: url(../img/bg.png); } .x { background: url(/img/bg.png); }`)
	bg := res("img/bg.png", "png")
	view := res("view/main.html", `<a href="/index.html">home</a><a href="../../outside.html">x</a>`)

	g, err := BuildGraph(testRoot, []*Resource{view, bg, style, index}, nil, discardLogger())
	require.NoError(t, err)

	rels := make([]string, 0)
	for _, r := range g.Resources() {
		rels = append(rels, r.RelPath)
	}
	assert.Equal(t, []string{"css/style.css", "img/bg.png", "index.html", "view/main.html"}, rels)

	require.Len(t, index.References, 3)
	assert.Same(t, style, index.References[0].Target)
	assert.Same(t, view, index.References[1].Target)
	assert.False(t, index.References[2].Resolved())

	require.Len(t, style.References, 2)
	assert.Same(t, bg, style.References[0].Target)
	assert.Same(t, bg, style.References[1].Target)

	require.Len(t, view.References, 2)
	assert.Same(t, index, view.References[0].Target)
	assert.False(t, view.References[1].Resolved(), "references above the root stay unresolved")

	resolved, unresolved := g.Counts()
	assert.Equal(t, 5, resolved)
	assert.Equal(t, 2, unresolved)
}

func TestBuildGraphRootAbsoluteFromNestedDepth(t *testing.T) {
	index := res("index.html", "<p>home</p>")
	deep := res("a/b/c/d.html", `<a href="/index.html">home</a>`)

	_, err := BuildGraph(testRoot, []*Resource{index, deep}, nil, discardLogger())
	require.NoError(t, err)
	require.Len(t, deep.References, 1)
	assert.Same(t, index, deep.References[0].Target)
}

func TestBuildGraphImplicitModuleExtension(t *testing.T) {
	app := res("application.js", `require('./short'); require('./layout.js');`)
	short := res("short.js", "module.exports = 1;")
	layout := res("layout.js", "module.exports = 2;")

	_, err := BuildGraph(testRoot, []*Resource{app, short, layout}, nil, discardLogger())
	require.NoError(t, err)
	require.Len(t, app.References, 2)
	assert.Same(t, short, app.References[0].Target)
	assert.True(t, app.References[0].ImplicitExt)
	assert.Same(t, layout, app.References[1].Target)
	assert.False(t, app.References[1].ImplicitExt)
}

func TestBuildGraphSelfAndMutualReferences(t *testing.T) {
	a := res("a.js", `require('./b.js'); require('./a.js');`)
	b := res("b.js", `require('./a.js');`)

	_, err := BuildGraph(testRoot, []*Resource{a, b}, nil, discardLogger())
	require.NoError(t, err)
	assert.Same(t, b, a.References[0].Target)
	assert.Same(t, a, a.References[1].Target)
	assert.Same(t, a, b.References[0].Target)
}

func TestBuildGraphExternalResources(t *testing.T) {
	style := res("css/style.css", `.a { background: url(../img/ext.png); }`)
	fsys := &memFS{files: map[string][]byte{
		"/site/img/ext.png": []byte("dummy"),
	}}

	g, err := BuildGraph(testRoot, []*Resource{style}, fsys, discardLogger())
	require.NoError(t, err)

	ext, ok := g.Lookup("img/ext.png")
	require.True(t, ok)
	assert.True(t, ext.External)
	assert.Equal(t, []byte("dummy"), ext.Content)
	assert.Same(t, ext, style.References[0].Target)
}

func TestBuildGraphExternalReadFailure(t *testing.T) {
	style := res("css/style.css", `.a { background: url(../img/ext.png); }`)
	fsys := &memFS{files: map[string][]byte{"/site/img/ext.png": nil}, readErr: errUpstream}

	_, err := BuildGraph(testRoot, []*Resource{style}, fsys, discardLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
	assert.ErrorIs(t, err, errUpstream)
}

func TestBuildGraphDuplicatePaths(t *testing.T) {
	_, err := BuildGraph(testRoot, []*Resource{res("a.css", "x"), res("a.css", "y")}, nil, discardLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestBuildGraphUnicodeNormalization(t *testing.T) {
	// "café" with a combining accent on disk, referenced in composed form.
	decomposed := res("img/cafe\u0301.png", "png")
	page := res("index.html", "<img src=\"img/caf\u00e9.png\">")

	_, err := BuildGraph(testRoot, []*Resource{decomposed, page}, nil, discardLogger())
	require.NoError(t, err)
	require.Len(t, page.References, 1)
	assert.Same(t, decomposed, page.References[0].Target)
}
