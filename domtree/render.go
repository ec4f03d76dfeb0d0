package domtree

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render serialises id and its subtree (outer markup).
func (t *Tree) Render(id NodeID) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, t.toHTML(id, t.htmlParent(id))); err != nil {
		return "", fmt.Errorf("domtree: render: %w", err)
	}
	return buf.String(), nil
}

// InnerHTML serialises the children of id.
func (t *Tree) InnerHTML(id NodeID) (string, error) {
	parent := t.shallowHTML(id)
	var buf bytes.Buffer
	for _, c := range t.nodes[id].children {
		if err := html.Render(&buf, t.toHTML(c, parent)); err != nil {
			return "", fmt.Errorf("domtree: render: %w", err)
		}
	}
	return buf.String(), nil
}

// MustRender is Render for tests and debugging; errors render as "".
func (t *Tree) MustRender(id NodeID) string {
	s, _ := t.Render(id)
	return s
}

// htmlParent returns a childless stand-in for the parent of id, so raw-text
// parents (script, style) still affect escaping of a rendered text node.
func (t *Tree) htmlParent(id NodeID) *html.Node {
	p := t.nodes[id].parent
	if p == None {
		return nil
	}
	return t.shallowHTML(p)
}

func (t *Tree) shallowHTML(id NodeID) *html.Node {
	n := t.nodes[id]
	return &html.Node{
		Type:      html.ElementNode,
		Data:      n.tag,
		DataAtom:  atom.Lookup([]byte(n.tag)),
		Namespace: n.namespace,
	}
}

// toHTML builds an x/net/html subtree for id. parent, when non-nil, is only
// used as the back-reference of the returned node and is not linked to it.
func (t *Tree) toHTML(id NodeID, parent *html.Node) *html.Node {
	n := t.nodes[id]
	var out *html.Node
	switch n.kind {
	case TextNode:
		out = &html.Node{Type: html.TextNode, Data: n.data}
	case CommentNode:
		out = &html.Node{Type: html.CommentNode, Data: n.data}
	default:
		out = &html.Node{
			Type:      html.ElementNode,
			Data:      n.tag,
			DataAtom:  atom.Lookup([]byte(n.tag)),
			Namespace: n.namespace,
			Attr:      make([]html.Attribute, 0, len(n.attrs)),
		}
		for _, a := range n.attrs {
			attr := html.Attribute{Key: a.Name, Val: a.Value}
			if ns, key, ok := strings.Cut(a.Name, ":"); ok && (ns == "xlink" || ns == "xml" || ns == "xmlns") {
				attr.Namespace, attr.Key = ns, key
			}
			out.Attr = append(out.Attr, attr)
		}
		for _, c := range n.children {
			out.AppendChild(t.toHTML(c, nil))
		}
	}
	out.Parent = parent
	return out
}
