package revision

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	attrPattern    = regexp.MustCompile(`([^\s"'<>/=]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+))`)
	tagNamePattern = regexp.MustCompile(`^</?[A-Za-z][^\s/>]*`)
	quotedPattern  = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
)

// assetAttrs carry a single asset path as their whole value.
var assetAttrs = map[string]bool{
	"href": true, "src": true, "data-src": true, "poster": true, "ng-src": true,
	"ng-href": true, "xlink:href": true, "data": true, "action": true, "background": true,
}

// descriptiveAttrs never carry asset paths.
var descriptiveAttrs = map[string]bool{
	"alt": true, "title": true, "class": true, "id": true, "name": true, "rel": true,
	"type": true, "lang": true, "charset": true, "width": true, "height": true,
	"content": true, "value": true, "placeholder": true, "for": true, "role": true,
}

// extractHTML tokenizes markup and scans tag attributes, <script> text (JS rules) and
// <style> text (CSS rules). The tokenizer's raw token lengths track byte offsets into
// content.
func extractHTML(content []byte) []Occurrence {
	z := html.NewTokenizer(bytes.NewReader(content))
	var occs []Occurrence
	offset := 0
	rawText := ""

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		size := len(z.Raw())
		start, end := offset, offset+size
		offset = end

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			occs = append(occs, scanTag(content, start, end)...)
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					rawText = string(name)
				}
			}
		case html.EndTagToken:
			rawText = ""
		case html.TextToken:
			switch rawText {
			case "script":
				occs = append(occs, extractJS(content, start, end)...)
			case "style":
				occs = append(occs, extractCSS(content, start, end)...)
			}
		}
	}
	return occs
}

// scanTag applies attribute rules to the raw tag text content[start:end].
func scanTag(content []byte, start, end int) []Occurrence {
	tag := content[start:end]
	nameEnd := 0
	if loc := tagNamePattern.FindIndex(tag); loc != nil {
		nameEnd = loc[1]
	}

	var occs []Occurrence
	for _, m := range attrPattern.FindAllSubmatchIndex(tag[nameEnd:], -1) {
		attr := strings.ToLower(string(tag[nameEnd+m[2] : nameEnd+m[3]]))
		vs, ve, ok := firstGroup(m[2:])
		if !ok {
			continue
		}
		vs, ve = start+nameEnd+vs, start+nameEnd+ve

		switch {
		case descriptiveAttrs[attr]:
		case assetAttrs[attr]:
			if occ, ok := newOccurrence(content, vs, ve, true); ok && isPathLike(occ.Candidate) {
				occs = append(occs, occ)
			}
		case attr == "srcset":
			occs = append(occs, scanSrcset(content, vs, ve)...)
		case attr == "style":
			occs = append(occs, extractCSS(content, vs, ve)...)
		default:
			occs = append(occs, scanQuoted(content, vs, ve)...)
		}
	}
	return occs
}

// scanSrcset handles "a.png 1x, b.png 2x" lists.
func scanSrcset(content []byte, from, to int) []Occurrence {
	var occs []Occurrence
	pos := from
	for pos < to {
		next := bytes.IndexByte(content[pos:to], ',')
		entryEnd := to
		if next >= 0 {
			entryEnd = pos + next
		}
		s := pos
		for s < entryEnd && isSpace(content[s]) {
			s++
		}
		e := s
		for e < entryEnd && !isSpace(content[e]) {
			e++
		}
		if occ, ok := newOccurrence(content, s, e, true); ok && isPathLike(occ.Candidate) {
			occs = append(occs, occ)
		}
		pos = entryEnd + 1
	}
	return occs
}

// scanQuoted finds quoted path literals nested in an attribute value, such as
// ng-include="'view/footer.html'".
func scanQuoted(content []byte, from, to int) []Occurrence {
	var occs []Occurrence
	for _, m := range quotedPattern.FindAllSubmatchIndex(content[from:to], -1) {
		s, e, ok := firstGroup(m)
		if !ok {
			continue
		}
		if occ, ok := newOccurrence(content, from+s, from+e, true); ok && isPathLike(occ.Candidate) {
			occs = append(occs, occ)
		}
	}
	return occs
}
