package revision

import (
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
)

// Graph holds every resource of one run and its resolved outgoing references.
type Graph struct {
	root      string
	resources []*Resource
	byKey     map[string]*Resource
	fs        FileSystem
	logger    *slog.Logger

	resolved   int
	unresolved int
}

// BuildGraph extracts and resolves the references of every resource. Resources must have
// unique root-relative paths. When fs is non-nil, references missing from the batch are
// looked up below root and loaded as external resources, which are scanned as well.
func BuildGraph(root string, resources []*Resource, fs FileSystem, logger *slog.Logger) (*Graph, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Graph{
		root:   NormalizeRoot(root),
		byKey:  make(map[string]*Resource, len(resources)),
		fs:     fs,
		logger: logger,
	}
	for _, r := range resources {
		key := pathKey(r.RelPath)
		if prev, dup := g.byKey[key]; dup {
			return nil, errors.ValidationError("duplicate resource path").
				WithContext("path", r.RelPath).
				WithContext("first", prev.SourcePath).
				WithContext("second", r.SourcePath).
				Build()
		}
		g.byKey[key] = r
		g.resources = append(g.resources, r)
	}

	// External resources are appended while iterating and get scanned in turn.
	for i := 0; i < len(g.resources); i++ {
		if err := g.link(g.resources[i]); err != nil {
			return nil, err
		}
	}

	sort.Slice(g.resources, func(i, j int) bool {
		return g.resources[i].RelPath < g.resources[j].RelPath
	})
	return g, nil
}

// Resources returns all resources, external ones included, sorted by RelPath.
func (g *Graph) Resources() []*Resource {
	return g.resources
}

// Lookup finds a resource by root-relative path.
func (g *Graph) Lookup(relPath string) (*Resource, bool) {
	r, ok := g.byKey[pathKey(relPath)]
	return r, ok
}

// Root returns the normalized root directory.
func (g *Graph) Root() string {
	return g.root
}

// Counts returns the number of resolved and unresolved references.
func (g *Graph) Counts() (resolved, unresolved int) {
	return g.resolved, g.unresolved
}

func (g *Graph) link(r *Resource) error {
	class := r.Class()
	for _, occ := range ExtractReferences(r.Content, class) {
		ref := &Reference{Occurrence: occ}
		target, implicit, err := g.resolve(r, occ.Candidate, class)
		if err != nil {
			return err
		}
		ref.Target = target
		ref.ImplicitExt = implicit
		if target == nil {
			g.unresolved++
			g.logger.Debug("Unresolved reference",
				logfields.Path(r.RelPath),
				logfields.Reference(occ.Candidate))
		} else {
			g.resolved++
		}
		r.References = append(r.References, ref)
	}
	return nil
}

// resolve maps a candidate to a resource: root-absolute candidates against the root,
// others against the referencing resource's directory.
func (g *Graph) resolve(from *Resource, candidate string, class Class) (*Resource, bool, error) {
	candidate = toSlash(candidate)
	var rel string
	if strings.HasPrefix(candidate, "/") {
		rel = path.Clean(candidate)
	} else {
		// A candidate climbing above the root is unresolvable.
		if escapesRoot(from.Dir(), candidate) {
			return nil, false, nil
		}
		rel = path.Join("/", from.Dir(), candidate)
	}
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return nil, false, nil
	}

	tries := []string{rel}
	if class == ClassJS && path.Ext(path.Base(rel)) == "" {
		for _, ext := range moduleExts {
			tries = append(tries, rel+ext)
		}
	}

	for i, try := range tries {
		if r, ok := g.Lookup(try); ok {
			return r, i > 0, nil
		}
	}
	if g.fs == nil {
		return nil, false, nil
	}
	for i, try := range tries {
		r, err := g.loadExternal(try)
		if err != nil {
			return nil, false, err
		}
		if r != nil {
			return r, i > 0, nil
		}
	}
	return nil, false, nil
}

func escapesRoot(dir, candidate string) bool {
	joined := path.Join(dir, candidate)
	return joined == ".." || strings.HasPrefix(joined, "../")
}

func (g *Graph) loadExternal(rel string) (*Resource, error) {
	name := filepath.FromSlash(JoinURL(g.root, rel))
	if !g.fs.Exists(name) {
		return nil, nil
	}
	content, err := g.fs.ReadFile(name)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read referenced file").
			Fatal().
			WithContext("path", name).
			Build()
	}
	r := newResource(name, rel, content)
	r.External = true
	g.byKey[pathKey(rel)] = r
	g.resources = append(g.resources, r)
	g.logger.Debug("Loaded external resource", logfields.Path(rel))
	return r, nil
}
