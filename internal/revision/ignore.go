package revision

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// DefaultIgnoreRules keeps favicon.ico at its well-known location.
var DefaultIgnoreRules = []string{"favicon.ico"}

// patternPrefix marks an ignore rule as a regular expression rather than a suffix.
const patternPrefix = "re:"

// IgnorePolicy decides whether a resource keeps its original basename. It must be a pure
// function of the root-relative path.
type IgnorePolicy interface {
	IsIgnored(relPath string) bool
}

// IgnoreMatcher matches root-relative paths against literal suffixes and regular
// expressions. Both kinds see the path with a leading "/" so rules can anchor on the root.
type IgnoreMatcher struct {
	suffixes []string
	patterns []*regexp.Regexp
}

// NewIgnoreMatcher compiles rules. A rule starting with "re:" is a regular expression;
// any other rule is a literal suffix such as ".html" or "favicon.ico".
func NewIgnoreMatcher(rules []string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{}
	for _, rule := range rules {
		if expr, ok := strings.CutPrefix(rule, patternPrefix); ok {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryValidation, "invalid ignore pattern").
					Fatal().
					WithContext("rule", rule).
					Build()
			}
			m.patterns = append(m.patterns, re)
			continue
		}
		if rule == "" {
			continue
		}
		m.suffixes = append(m.suffixes, toSlash(rule))
	}
	return m, nil
}

// AddPattern appends a precompiled regular expression rule.
func (m *IgnoreMatcher) AddPattern(re *regexp.Regexp) *IgnoreMatcher {
	m.patterns = append(m.patterns, re)
	return m
}

// IsIgnored implements IgnorePolicy.
func (m *IgnoreMatcher) IsIgnored(relPath string) bool {
	if m == nil {
		return false
	}
	p := toSlash(relPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	for _, re := range m.patterns {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}

// IgnoreNothing is the policy that renames every resource.
type IgnoreNothing struct{}

func (IgnoreNothing) IsIgnored(string) bool { return false }
