package revision

import "regexp"

var (
	cssURLPattern    = regexp.MustCompile(`(?i)url\(\s*(?:"([^"]*)"|'([^']*)'|([^)"'\s]*))\s*\)`)
	cssImportPattern = regexp.MustCompile(`(?i)@import\s+(?:"([^"]*)"|'([^']*)')`)
)

// extractCSS scans content[from:to] for url(...) and @import string references. Offsets
// are absolute, so inline <style> blocks and style attributes can reuse it.
func extractCSS(content []byte, from, to int) []Occurrence {
	region := content[from:to]
	var occs []Occurrence
	for _, pattern := range []*regexp.Regexp{cssURLPattern, cssImportPattern} {
		for _, m := range pattern.FindAllSubmatchIndex(region, -1) {
			start, end, ok := firstGroup(m)
			if !ok {
				continue
			}
			occ, ok := newOccurrence(content, from+start, from+end, false)
			if !ok || !isPathLike(occ.Candidate) {
				continue
			}
			occs = append(occs, occ)
		}
	}
	return occs
}
