package revision

import (
	"encoding/hex"
	"path"
	"strings"
)

// Descriptor is one input file as supplied by the collecting transport.
type Descriptor struct {
	Path    string // Absolute or original path
	Base    string // Base directory the transport globbed from
	Content []byte
}

// Output is one revisioned file handed to the downstream sink.
type Output struct {
	Path         string // Source path with the basename replaced
	RelPath      string // New root-relative path
	OriginalPath string // Original root-relative path
	Digest       string // Full hex digest
	Ignored      bool
	Content      []byte
}

// Resource is one node of the reference graph.
type Resource struct {
	SourcePath string
	RelPath    string
	Content    []byte
	Ext        string
	Ignored    bool
	External   bool // Loaded through FileSystem; hashed and referenced but never emitted
	References []*Reference

	digest       []byte
	FinalBase    string
	FinalRelPath string
}

// Reference is one outgoing edge: an occurrence in the referencing content plus the
// resource it resolved to, if any.
type Reference struct {
	Occurrence
	Target *Resource
	// ImplicitExt is set when a module-style reference omitted the target's extension.
	ImplicitExt bool
}

// Resolved reports whether the reference points at a known resource.
func (r *Reference) Resolved() bool {
	return r.Target != nil
}

func newResource(sourcePath, rel string, content []byte) *Resource {
	return &Resource{
		SourcePath: sourcePath,
		RelPath:    rel,
		Content:    content,
		Ext:        strings.ToLower(path.Ext(rel)),
	}
}

// Dir returns the root-relative directory of the resource ("." at the root).
func (r *Resource) Dir() string {
	return path.Dir(r.RelPath)
}

// Basename returns the original file name.
func (r *Resource) Basename() string {
	return path.Base(r.RelPath)
}

// Stem returns the original file name without its extension.
func (r *Resource) Stem() string {
	base := r.Basename()
	return strings.TrimSuffix(base, path.Ext(base))
}

// Digest returns the full hex digest, or "" before hashing.
func (r *Resource) Digest() string {
	if r.digest == nil {
		return ""
	}
	return hex.EncodeToString(r.digest)
}

// Class returns the extraction class selected by the resource's extension.
func (r *Resource) Class() Class {
	return ClassOf(r.Ext)
}
