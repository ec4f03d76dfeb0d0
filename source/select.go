package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/domsnap/domtree"
)

// ErrNoMatch is returned by Select when nothing matches.
var ErrNoMatch = errors.New("source: selector matched nothing")

// Select returns the first element under the tree root matching selector.
// An empty selector selects the root.
//
// Supported selectors are simple compounds joined by spaces (descendant
// combinator):
//   - tag: "main"
//   - .class, #id: ".content", "#app"
//   - tag.class, tag#id: "div.content", "div#main"
//   - [attr], [attr=val]: "[data-preserve]", "div[role=main]"
func Select(tree *domtree.Tree, selector string) (domtree.NodeID, error) {
	if strings.TrimSpace(selector) == "" {
		return tree.Root(), nil
	}
	matches := SelectAll(tree, selector)
	if len(matches) == 0 {
		return domtree.None, fmt.Errorf("%w: %q", ErrNoMatch, selector)
	}
	return matches[0], nil
}

// SelectAll returns every match of selector in document order.
func SelectAll(tree *domtree.Tree, selector string) []domtree.NodeID {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}
	compounds := make([]compound, len(parts))
	for i, p := range parts {
		compounds[i] = parseCompound(p)
	}

	var out []domtree.NodeID
	for _, n := range tree.Walk(tree.Root(), domtree.ElementNode) {
		if matchChain(tree, n, compounds) {
			out = append(out, n)
		}
	}
	if matchChain(tree, tree.Root(), compounds) {
		out = append([]domtree.NodeID{tree.Root()}, out...)
	}
	return out
}

type compound struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
	hasVal  bool
}

func parseCompound(sel string) compound {
	var c compound
	if i := strings.IndexByte(sel, '['); i >= 0 {
		attr := strings.TrimSuffix(sel[i+1:], "]")
		sel = sel[:i]
		if eq := strings.IndexByte(attr, '='); eq >= 0 {
			c.attrKey = attr[:eq]
			c.attrVal = strings.Trim(attr[eq+1:], `"'`)
			c.hasVal = true
		} else {
			c.attrKey = attr
		}
	}
	if i := strings.IndexByte(sel, '#'); i >= 0 {
		c.id = sel[i+1:]
		sel = sel[:i]
	}
	if i := strings.IndexByte(sel, '.'); i >= 0 {
		c.class = sel[i+1:]
		sel = sel[:i]
	}
	c.tag = strings.ToLower(sel)
	return c
}

func (c compound) match(tree *domtree.Tree, n domtree.NodeID) bool {
	if !tree.IsElement(n) {
		return false
	}
	if c.tag != "" && c.tag != "*" && tree.Tag(n) != c.tag {
		return false
	}
	if c.id != "" {
		if v, _ := tree.Attr(n, "id"); v != c.id {
			return false
		}
	}
	if c.class != "" {
		v, _ := tree.Attr(n, "class")
		found := false
		for _, cls := range strings.Fields(v) {
			if cls == c.class {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.attrKey != "" {
		v, ok := tree.Attr(n, c.attrKey)
		if !ok || (c.hasVal && v != c.attrVal) {
			return false
		}
	}
	return true
}

// matchChain matches the last compound on n and the earlier ones on its
// ancestors, right to left.
func matchChain(tree *domtree.Tree, n domtree.NodeID, chain []compound) bool {
	last := len(chain) - 1
	if !chain[last].match(tree, n) {
		return false
	}
	i := last - 1
	for p := tree.Parent(n); i >= 0 && p != domtree.None; p = tree.Parent(p) {
		if chain[i].match(tree, p) {
			i--
		}
	}
	return i < 0
}
