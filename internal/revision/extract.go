package revision

import (
	"html"
	"path"
	"regexp"
	"sort"
	"strings"
)

// Class selects the reference extraction rules for a content type.
type Class int

const (
	ClassOpaque Class = iota
	ClassHTML
	ClassCSS
	ClassJS
	ClassMarkdown
)

func (c Class) String() string {
	switch c {
	case ClassHTML:
		return "html"
	case ClassCSS:
		return "css"
	case ClassJS:
		return "js"
	case ClassMarkdown:
		return "markdown"
	default:
		return "opaque"
	}
}

var classByExt = map[string]Class{
	".html": ClassHTML, ".htm": ClassHTML, ".xhtml": ClassHTML, ".hbs": ClassHTML,
	".handlebars": ClassHTML, ".mustache": ClassHTML, ".ejs": ClassHTML, ".tmpl": ClassHTML,
	".tpl": ClassHTML, ".vue": ClassHTML, ".php": ClassHTML,

	".css": ClassCSS, ".scss": ClassCSS, ".sass": ClassCSS, ".less": ClassCSS, ".styl": ClassCSS,

	".js": ClassJS, ".mjs": ClassJS, ".cjs": ClassJS, ".jsx": ClassJS, ".ts": ClassJS,
	".tsx": ClassJS, ".coffee": ClassJS,

	".md": ClassMarkdown, ".markdown": ClassMarkdown,
}

// ClassOf maps a file extension (with or without the leading dot) to its class.
func ClassOf(ext string) Class {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return classByExt[ext]
}

// knownExts are the extensions a reference may end in to count as an asset path.
var knownExts = map[string]bool{
	".html": true, ".htm": true, ".xhtml": true, ".hbs": true, ".handlebars": true,
	".mustache": true, ".ejs": true, ".tmpl": true, ".tpl": true, ".vue": true,
	".css": true, ".scss": true, ".less": true,
	".js": true, ".mjs": true, ".cjs": true, ".jsx": true, ".ts": true, ".tsx": true, ".map": true,
	".json": true, ".xml": true, ".txt": true, ".md": true, ".webmanifest": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true,
	".avif": true, ".ico": true, ".bmp": true,
	".eot": true, ".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
	".mp4": true, ".webm": true, ".ogg": true, ".mp3": true, ".wav": true, ".pdf": true,
	".swf": true, ".wasm": true,
}

// moduleExts are tried, in order, when a module-style reference omits its extension.
var moduleExts = []string{".js", ".mjs", ".jsx", ".ts"}

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// Occurrence is one candidate reference inside a file's content. Start and End are byte
// offsets with End exclusive; Text is content[Start:End] verbatim.
type Occurrence struct {
	Start     int
	End       int
	Text      string
	Candidate string
}

// ExtractReferences returns the candidate references in content for the given class,
// sorted by position and free of overlaps.
func ExtractReferences(content []byte, class Class) []Occurrence {
	var occs []Occurrence
	switch class {
	case ClassHTML:
		occs = extractHTML(content)
	case ClassCSS:
		occs = extractCSS(content, 0, len(content))
	case ClassJS:
		occs = extractJS(content, 0, len(content))
	case ClassMarkdown:
		occs = extractMarkdown(content)
	default:
		return nil
	}
	return dedupeOccurrences(occs)
}

// newOccurrence trims whitespace around content[start:end] and cuts any query string or
// fragment, so the span covers the path alone and the suffix survives a rewrite.
func newOccurrence(content []byte, start, end int, decodeEntities bool) (Occurrence, bool) {
	for start < end && isSpace(content[start]) {
		start++
	}
	for end > start && isSpace(content[end-1]) {
		end--
	}
	raw := string(content[start:end])
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
		end = start + i
	}
	if raw == "" {
		return Occurrence{}, false
	}
	candidate := raw
	if decodeEntities && strings.Contains(candidate, "&") {
		candidate = html.UnescapeString(candidate)
	}
	return Occurrence{Start: start, End: end, Text: raw, Candidate: candidate}, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// isPathLike reports whether s can name an asset: no whitespace, no URL scheme, not
// protocol-relative, not a fragment or template expression, and either containing a
// "/" or ending in a known extension.
func isPathLike(s string) bool {
	if !isLocalPath(s) {
		return false
	}
	return strings.Contains(s, "/") || hasKnownExt(s)
}

func isLocalPath(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n\\<>{}$*|\"'`") {
		return false
	}
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#") {
		return false
	}
	return !schemePattern.MatchString(s)
}

func hasKnownExt(s string) bool {
	return knownExts[strings.ToLower(path.Ext(s))]
}

// isModulePath reports whether a JS string literal looks like a module or asset path:
// relative ("./", "../") or containing a separator, ending in a known extension or
// omitting the extension.
func isModulePath(s string) bool {
	if !isLocalPath(s) || !strings.Contains(s, "/") || strings.HasSuffix(s, "/") {
		return false
	}
	last := path.Base(s)
	if last == "." || last == ".." {
		return false
	}
	ext := path.Ext(last)
	return ext == "" || hasKnownExt(last)
}

func dedupeOccurrences(occs []Occurrence) []Occurrence {
	if len(occs) < 2 {
		return occs
	}
	sort.SliceStable(occs, func(i, j int) bool { return occs[i].Start < occs[j].Start })
	out := occs[:1]
	for _, o := range occs[1:] {
		if o.Start < out[len(out)-1].End {
			continue
		}
		out = append(out, o)
	}
	return out
}

// firstGroup returns the span of the first participating capture group in a
// FindAllSubmatchIndex match, skipping the whole-match pair.
func firstGroup(m []int) (int, int, bool) {
	for i := 2; i+1 < len(m); i += 2 {
		if m[i] >= 0 {
			return m[i], m[i+1], true
		}
	}
	return 0, 0, false
}
