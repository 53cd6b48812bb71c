package normalization

import (
	"strings"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// EnumNormalizer names a Normalizer so its failures read well in configuration errors.
type EnumNormalizer[T comparable] struct {
	*Normalizer[T]
	name string
}

// NewEnumNormalizer creates a named normalizer.
func NewEnumNormalizer[T comparable](name string, values map[string]T, fallback T) *EnumNormalizer[T] {
	return &EnumNormalizer[T]{Normalizer: NewNormalizer(values, fallback), name: name}
}

// NormalizeWithValidation returns the value for raw or a validation error listing the
// accepted spellings.
func (e *EnumNormalizer[T]) NormalizeWithValidation(raw string) (T, error) {
	if v, ok := e.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, errors.ValidationError("invalid "+e.name).
		WithContext("value", raw).
		WithContext("valid", strings.Join(e.Keys(), ", ")).
		Build()
}

// ValidValues returns the accepted spellings for help output.
func (e *EnumNormalizer[T]) ValidValues() []string {
	return e.Keys()
}
