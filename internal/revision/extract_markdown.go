package revision

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown finds link, image and reference-definition destinations with goldmark,
// then locates each destination in the source in document order. Goldmark does not keep
// destination offsets, so a destination only counts where it follows "(", "<" or a
// reference definition's ":", which keeps identical link text untouched.
func extractMarkdown(content []byte) []Occurrence {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(content), parser.WithContext(ctx))

	var dests [][]byte
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Image:
			dests = append(dests, node.Destination)
		case *gmast.Link:
			dests = append(dests, node.Destination)
		}
		return gmast.WalkContinue, nil
	})
	for _, ref := range ctx.References() {
		dests = append(dests, ref.Destination())
	}

	var occs []Occurrence
	cursor := make(map[string]int)
	seen := make(map[int]bool)
	for _, dest := range dests {
		if len(dest) == 0 || !isPathLike(string(trimQueryFragment(dest))) {
			continue
		}
		key := string(dest)
		pos, found := findDestination(content, dest, cursor[key])
		for found && seen[pos] {
			pos, found = findDestination(content, dest, pos+1)
		}
		if !found {
			continue
		}
		cursor[key] = pos + len(dest)
		seen[pos] = true
		if occ, ok := newOccurrence(content, pos, pos+len(dest), false); ok {
			occs = append(occs, occ)
		}
	}
	return occs
}

func trimQueryFragment(dest []byte) []byte {
	if i := bytes.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i]
	}
	return dest
}

func findDestination(content, dest []byte, from int) (int, bool) {
	for from <= len(content) {
		i := bytes.Index(content[from:], dest)
		if i < 0 {
			return 0, false
		}
		pos := from + i
		if precededByOpener(content, pos) {
			return pos, true
		}
		from = pos + 1
	}
	return 0, false
}

func precededByOpener(content []byte, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch content[i] {
		case ' ', '\t':
			continue
		case '(', '<', ':':
			return true
		default:
			return false
		}
	}
	return false
}
