package revision

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var drivePrefix = regexp.MustCompile(`^[A-Za-z]:/`)

// toSlash converts platform separators to forward slashes regardless of the host OS,
// so Windows-style input is handled the same everywhere.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// NormalizeRoot converts separators to forward slashes and strips trailing separators.
// A bare "/" stays "/".
func NormalizeRoot(dir string) string {
	dir = toSlash(dir)
	trimmed := strings.TrimRight(dir, "/")
	if trimmed == "" && strings.HasPrefix(dir, "/") {
		return "/"
	}
	return trimmed
}

func isAbsPath(p string) bool {
	return strings.HasPrefix(p, "/") || drivePrefix.MatchString(p)
}

// pathKey is the lookup key for a root-relative path. NFC folding makes decomposed
// filenames (as written by macOS) match references typed in composed form.
func pathKey(rel string) string {
	return norm.NFC.String(rel)
}

// rootRelative returns p relative to root, or false when p lies outside root.
// Paths that are not absolute are taken as already root-relative.
func rootRelative(root, p string) (string, bool) {
	p = toSlash(p)
	if !isAbsPath(p) {
		rel := path.Clean(p)
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			return "", false
		}
		return strings.TrimPrefix(rel, "./"), true
	}
	prefix := root
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(p, prefix))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// relPath returns the forward-slash relative path from directory fromDir to target.
// Both arguments are root-relative; "." or "" denote the root itself.
func relPath(fromDir, target string) string {
	from := splitSegments(fromDir)
	to := splitSegments(target)

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}

func splitSegments(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// JoinURL joins URL or path elements with exactly one "/" between them. The first
// element keeps its leading slashes and scheme, so "//cdn.example.com/" and
// "http://example.com/" prefixes survive. Backslashes are converted to "/".
func JoinURL(elems ...string) string {
	out := ""
	for _, e := range elems {
		e = toSlash(e)
		if e == "" {
			continue
		}
		if out == "" {
			out = e
			continue
		}
		out = strings.TrimRight(out, "/") + "/" + strings.TrimLeft(e, "/")
	}
	return out
}
