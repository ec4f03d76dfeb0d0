package domtree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a full HTML document. The root is the <html> element.
func Parse(r io.Reader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("domtree: parse: %w", err)
	}
	t := New()
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			t.root = t.importNode(c)
			break
		}
	}
	if t.root == None {
		return nil, fmt.Errorf("domtree: parse: no document element")
	}
	return t, nil
}

// ParseString is Parse over a string.
func ParseString(markup string) (*Tree, error) {
	return Parse(strings.NewReader(markup))
}

// FromHTML imports an x/net/html subtree. The imported element becomes the root.
func FromHTML(n *html.Node) *Tree {
	t := New()
	if n.Type == html.DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				n = c
				break
			}
		}
	}
	t.root = t.importNode(n)
	return t
}

// ParseFragment parses markup as a fragment in a <body> context and returns
// the top-level nodes, allocated in t and detached.
func (t *Tree) ParseFragment(markup string) ([]NodeID, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("domtree: parse fragment: %w", err)
	}
	var out []NodeID
	for _, n := range nodes {
		if id := t.importNode(n); id != None {
			out = append(out, id)
		}
	}
	return out, nil
}

// importNode copies n and its descendants into the arena. Doctypes and
// other non-content nodes are skipped.
func (t *Tree) importNode(n *html.Node) NodeID {
	var id NodeID
	switch n.Type {
	case html.ElementNode:
		attrs := make([]Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, Attr{Name: name, Value: a.Val})
		}
		id = t.add(node{kind: ElementNode, tag: n.Data, namespace: n.Namespace})
		t.ReplaceAttrs(id, attrs)
	case html.TextNode:
		return t.add(node{kind: TextNode, data: n.Data})
	case html.CommentNode:
		return t.add(node{kind: CommentNode, data: n.Data})
	default:
		return None
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if cid := t.importNode(c); cid != None {
			t.AppendChild(id, cid)
		}
	}
	return id
}
