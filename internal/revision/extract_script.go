package revision

import "regexp"

var (
	jsStringPattern = regexp.MustCompile(`"((?:[^"\\\n]|\\.)*)"|'((?:[^'\\\n]|\\.)*)'` + "|`([^`$\\\\]*)`")
	// Markup embedded in a string literal, as produced by template precompilers.
	embeddedAttrPattern = regexp.MustCompile(`(?i)\b(?:src|href|ng-src|ng-href|poster)\s*=\s*\\?["']([^"'\\\s]+)`)
)

// extractJS scans content[from:to] for quoted string literals that look like module or
// asset paths. Bare identifiers never match, so a variable named like a file is left
// alone. Literals that are not paths themselves are searched for embedded src/href
// attributes.
func extractJS(content []byte, from, to int) []Occurrence {
	region := content[from:to]
	var occs []Occurrence
	for _, m := range jsStringPattern.FindAllSubmatchIndex(region, -1) {
		start, end, ok := firstGroup(m)
		if !ok || start == end {
			continue
		}
		occ, ok := newOccurrence(content, from+start, from+end, false)
		if ok && occ.Start == from+start && isModulePath(occ.Candidate) {
			occs = append(occs, occ)
			continue
		}
		occs = append(occs, extractEmbeddedAttrs(content, from+start, from+end)...)
	}
	return occs
}

func extractEmbeddedAttrs(content []byte, from, to int) []Occurrence {
	var occs []Occurrence
	for _, m := range embeddedAttrPattern.FindAllSubmatchIndex(content[from:to], -1) {
		occ, ok := newOccurrence(content, from+m[2], from+m[3], false)
		if !ok || !isPathLike(occ.Candidate) {
			continue
		}
		occs = append(occs, occ)
	}
	return occs
}
