package revision

import (
	"strings"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// PathRef describes one resolved reference about to be rewritten.
type PathRef struct {
	// Revisioned is the default replacement: relative to the referencing resource, or
	// root-absolute when the original was.
	Revisioned string
	// Source is the referencing resource's source path.
	Source string
	// Original is the candidate path as written in the content.
	Original string
	// TargetPath is the target's new root-relative path, without the extension when the
	// original reference omitted it.
	TargetPath string
}

// Join joins URL or path elements with single slashes; see JoinURL.
func (PathRef) Join(elems ...string) string {
	return JoinURL(elems...)
}

// PathStrategy produces the literal text substituted for a resolved reference. It must
// be a pure function of the PathRef.
type PathStrategy interface {
	Path(ref PathRef) (string, error)
}

// RelativePaths substitutes the default revisioned reference.
type RelativePaths struct{}

func (RelativePaths) Path(ref PathRef) (string, error) {
	return ref.Revisioned, nil
}

// PrefixPaths substitutes Prefix joined with the target's new root-relative path,
// producing absolute URLs such as "https://cdn.example.com/css/style.1a2b3c4d.css".
type PrefixPaths struct {
	Prefix string
}

func (p PrefixPaths) Path(ref PathRef) (string, error) {
	return JoinURL(p.Prefix, ref.TargetPath), nil
}

// PathFunc adapts a function to PathStrategy.
type PathFunc func(ref PathRef) (string, error)

func (f PathFunc) Path(ref PathRef) (string, error) {
	return f(ref)
}

// targetPath is the target's new root-relative path as the reference should spell it.
func targetPath(ref *Reference) string {
	p := ref.Target.FinalRelPath
	if ref.ImplicitExt {
		p = strings.TrimSuffix(p, ref.Target.Ext)
	}
	return p
}

// defaultReference computes the relative replacement for ref inside from. Root-absolute
// originals stay root-absolute and a leading "./" is kept.
func defaultReference(from *Resource, ref *Reference) string {
	target := targetPath(ref)
	original := toSlash(ref.Candidate)
	if strings.HasPrefix(original, "/") {
		return "/" + target
	}
	rel := relPath(from.Dir(), target)
	if strings.HasPrefix(original, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// Rewrite returns r's content with every resolved reference replaced by the text the
// strategy produces. Unresolved references are left byte for byte.
func Rewrite(r *Resource, strategy PathStrategy) ([]byte, error) {
	if strategy == nil {
		strategy = RelativePaths{}
	}
	edits := make([]edit, 0, len(r.References))
	for _, ref := range r.References {
		if !ref.Resolved() {
			continue
		}
		pr := PathRef{
			Revisioned: defaultReference(r, ref),
			Source:     r.SourcePath,
			Original:   ref.Candidate,
			TargetPath: targetPath(ref),
		}
		replacement, err := strategy.Path(pr)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "path strategy failed").
				Fatal().
				WithContext("path", r.RelPath).
				WithContext("reference", ref.Candidate).
				Build()
		}
		if replacement == ref.Text {
			continue
		}
		edits = append(edits, edit{Start: ref.Start, End: ref.End, Replacement: []byte(replacement)})
	}

	out, err := applyEdits(r.Content, edits)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to apply reference edits").
			Fatal().
			WithContext("path", r.RelPath).
			Build()
	}
	return out, nil
}
