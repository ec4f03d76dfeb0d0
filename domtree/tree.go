// CLAUDE:SUMMARY Arena-backed markup tree: nodes addressed by stable NodeID, parent/children as index references.
// Package domtree is the mutable document tree used by the snapshot
// pipeline. Nodes live in an arena owned by the Tree and are addressed by
// NodeID; parent and child links are indices, so moving a node never
// requires reference bookkeeping outside the arena.
//
// Trees are parsed with golang.org/x/net/html and rendered back through it.
// A Tree is not safe for concurrent mutation.
package domtree

import (
	"slices"
	"strings"
)

// NodeID addresses a node inside its Tree.
type NodeID int

// None is the NodeID of a missing node (the parent of a detached node).
const None NodeID = -1

// Kind is a node kind. Kinds are bit flags so Walk can filter on several.
type Kind uint8

const (
	ElementNode Kind = 1 << iota
	TextNode
	CommentNode

	AllNodes = ElementNode | TextNode | CommentNode
)

func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "mixed"
}

// Attr is an element attribute.
type Attr struct {
	Name  string
	Value string
}

type node struct {
	kind      Kind
	tag       string
	namespace string
	data      string
	attrs     []Attr
	parent    NodeID
	children  []NodeID
	depth     int
}

// Tree is an arena of nodes with a designated root element.
type Tree struct {
	nodes []node
	root  NodeID
}

// New returns an empty tree with no root.
func New() *Tree {
	return &Tree{root: None}
}

// Root returns the root element, or None.
func (t *Tree) Root() NodeID { return t.root }

// SetRoot designates id as the root.
func (t *Tree) SetRoot(id NodeID) { t.root = id }

// Len returns the number of nodes ever allocated in the arena, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) add(n node) NodeID {
	n.parent = None
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// NewElement allocates a detached element.
func (t *Tree) NewElement(tag string, attrs ...Attr) NodeID {
	return t.add(node{kind: ElementNode, tag: tag, attrs: slices.Clone(attrs)})
}

// NewText allocates a detached text node.
func (t *Tree) NewText(data string) NodeID {
	return t.add(node{kind: TextNode, data: data})
}

// NewComment allocates a detached comment.
func (t *Tree) NewComment(data string) NodeID {
	return t.add(node{kind: CommentNode, data: data})
}

// Kind returns the kind of id.
func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].kind }

// IsElement reports whether id is an element.
func (t *Tree) IsElement(id NodeID) bool {
	return t.Valid(id) && t.nodes[id].kind == ElementNode
}

// Tag returns the tag name of an element, lower case for HTML elements.
func (t *Tree) Tag(id NodeID) string { return t.nodes[id].tag }

// Text returns the content of a text or comment node.
func (t *Tree) Text(id NodeID) string { return t.nodes[id].data }

// SetText replaces the content of a text or comment node.
func (t *Tree) SetText(id NodeID, data string) { t.nodes[id].data = data }

// Parent returns the parent of id, or None when id is detached.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// Children returns a copy of the child list of id.
func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.nodes[id].children)
}

// ElementChildren returns the element children of id.
func (t *Tree) ElementChildren(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range t.nodes[id].children {
		if t.nodes[c].kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Depth returns the depth annotation of id.
func (t *Tree) Depth(id NodeID) int { return t.nodes[id].depth }

// SetDepth sets the depth annotation of id.
func (t *Tree) SetDepth(id NodeID, d int) { t.nodes[id].depth = d }

// --- attributes ---

// Attr returns the value of attribute name on id.
func (t *Tree) Attr(id NodeID, name string) (string, bool) {
	for _, a := range t.nodes[id].attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether id carries attribute name. An empty name never matches.
func (t *Tree) HasAttr(id NodeID, name string) bool {
	if name == "" {
		return false
	}
	_, ok := t.Attr(id, name)
	return ok
}

// Attrs returns a copy of the attributes of id in document order.
func (t *Tree) Attrs(id NodeID) []Attr {
	return slices.Clone(t.nodes[id].attrs)
}

// SetAttr sets name to value, keeping the position of an existing attribute.
func (t *Tree) SetAttr(id NodeID, name, value string) {
	n := &t.nodes[id]
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes attribute name from id.
func (t *Tree) RemoveAttr(id NodeID, name string) {
	n := &t.nodes[id]
	n.attrs = slices.DeleteFunc(n.attrs, func(a Attr) bool { return a.Name == name })
}

// ReplaceAttrs replaces the whole attribute list of id. Later duplicates of
// a name are dropped so names stay unique.
func (t *Tree) ReplaceAttrs(id NodeID, attrs []Attr) {
	seen := make(map[string]bool, len(attrs))
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, a)
	}
	t.nodes[id].attrs = out
}

// --- structure ---

// IndexOf returns the position of child among the children of parent, or -1.
func (t *Tree) IndexOf(parent, child NodeID) int {
	return slices.Index(t.nodes[parent].children, child)
}

// Detach removes id from its parent. Its own subtree stays intact.
func (t *Tree) Detach(id NodeID) {
	p := t.nodes[id].parent
	if p == None {
		return
	}
	if i := t.IndexOf(p, id); i >= 0 {
		t.nodes[p].children = slices.Delete(t.nodes[p].children, i, i+1)
	}
	t.nodes[id].parent = None
}

// AppendChild moves child to the end of parent's children.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.InsertBefore(parent, child, None)
}

// InsertBefore moves child into parent immediately before ref. A None ref
// appends. As with the DOM, child is detached first, so ref is located after
// the move.
func (t *Tree) InsertBefore(parent, child, ref NodeID) {
	t.Detach(child)
	kids := t.nodes[parent].children
	at := len(kids)
	if ref != None {
		if i := slices.Index(kids, ref); i >= 0 {
			at = i
		}
	}
	t.nodes[parent].children = slices.Insert(kids, at, child)
	t.nodes[child].parent = parent
}

// ReplaceWith puts repl in place of id, in order, and detaches id.
func (t *Tree) ReplaceWith(id NodeID, repl ...NodeID) {
	p := t.nodes[id].parent
	if p == None {
		return
	}
	for _, r := range repl {
		t.InsertBefore(p, r, id)
	}
	t.Detach(id)
}

// Attached reports whether id is root or a descendant of root.
func (t *Tree) Attached(root, id NodeID) bool {
	for cur := id; cur != None; cur = t.nodes[cur].parent {
		if cur == root {
			return true
		}
	}
	return false
}

// Walk returns the nodes under root whose kind matches kinds, in document
// order. root itself is excluded. The list is a snapshot: callers may
// mutate the tree while iterating over it.
func (t *Tree) Walk(root NodeID, kinds Kind) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(id NodeID) {
		for _, c := range t.nodes[id].children {
			if t.nodes[c].kind&kinds != 0 {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Height returns the maximum element depth below root (root = 0).
func (t *Tree) Height(root NodeID) int {
	h := 0
	var walk func(NodeID, int)
	walk = func(id NodeID, d int) {
		if d > h {
			h = d
		}
		for _, c := range t.nodes[id].children {
			if t.nodes[c].kind == ElementNode {
				walk(c, d+1)
			}
		}
	}
	walk(root, 0)
	return h
}

// Clone deep-copies the subtree under root into a new Tree whose root is the
// copy. Depth annotations are copied as is.
func (t *Tree) Clone(root NodeID) *Tree {
	out := &Tree{nodes: make([]node, 0, len(t.nodes)), root: None}
	var cp func(NodeID, NodeID) NodeID
	cp = func(id, parent NodeID) NodeID {
		src := t.nodes[id]
		nid := out.add(node{
			kind:      src.kind,
			tag:       src.tag,
			namespace: src.namespace,
			data:      src.data,
			attrs:     slices.Clone(src.attrs),
			depth:     src.depth,
		})
		out.nodes[nid].parent = parent
		kids := make([]NodeID, 0, len(src.children))
		for _, c := range src.children {
			kids = append(kids, cp(c, nid))
		}
		out.nodes[nid].children = kids
		return nid
	}
	out.root = cp(root, None)
	return out
}

// TextContent concatenates the text nodes under id.
func (t *Tree) TextContent(id NodeID) string {
	var sb strings.Builder
	if t.nodes[id].kind == TextNode {
		return t.nodes[id].data
	}
	for _, n := range t.Walk(id, TextNode) {
		sb.WriteString(t.nodes[n].data)
	}
	return sb.String()
}
