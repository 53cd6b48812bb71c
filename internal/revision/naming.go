package revision

import (
	"path"
	"strings"
)

// DefaultHashLength is the number of hex digest characters put into file names.
const DefaultHashLength = 8

// NamingStrategy turns a resource and its truncated hex digest into a new basename.
// Implementations must be pure functions of their inputs; ignored resources never reach
// the strategy.
type NamingStrategy interface {
	Name(r *Resource, digest string) (string, error)
}

// DefaultNaming produces "<stem>.<digest>.<ext>", or "<stem>.<digest>" without extension.
type DefaultNaming struct{}

func (DefaultNaming) Name(r *Resource, digest string) (string, error) {
	base := r.Basename()
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return base + "." + digest, nil
	}
	return strings.TrimSuffix(base, ext) + "." + digest + ext, nil
}

// NamingFunc adapts a function to NamingStrategy.
type NamingFunc func(r *Resource, digest string) (string, error)

func (f NamingFunc) Name(r *Resource, digest string) (string, error) {
	return f(r, digest)
}
