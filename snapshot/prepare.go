package snapshot

import (
	"strconv"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/groundtruth"
)

// filteredTags never carry information worth a token.
var filteredTags = map[string]bool{"script": true, "style": true, "link": true}

// prepare strips comments and filtered elements, then annotates depth
// (root 0) and records the tree height.
func (r *run) prepare() {
	for _, id := range r.tree.Walk(r.root, domtree.CommentNode) {
		r.tree.Detach(id)
	}
	for _, id := range r.tree.Walk(r.root, domtree.ElementNode) {
		if filteredTags[r.tree.Tag(id)] {
			r.tree.Detach(id)
		}
	}

	r.tree.SetDepth(r.root, 0)
	r.height = 0
	for _, id := range r.tree.Walk(r.root, domtree.ElementNode) {
		d := r.tree.Depth(r.tree.Parent(id)) + 1
		r.tree.SetDepth(id, d)
		r.height = max(r.height, d)
	}
}

// annotate gives id depth d and numbers its descendants from there. Used
// for nodes spliced in after prepare.
func (r *run) annotate(id domtree.NodeID, d int) {
	r.tree.SetDepth(id, d)
	for _, c := range r.tree.Walk(id, domtree.ElementNode) {
		r.tree.SetDepth(c, r.tree.Depth(r.tree.Parent(c))+1)
	}
}

// assignUniqueIDs numbers container, interactive and preserve-marked
// elements in document order, starting at 0.
func (r *run) assignUniqueIDs() {
	n := 0
	for _, id := range r.tree.Walk(r.root, domtree.ElementNode) {
		tag := r.tree.Tag(id)
		switch {
		case r.cfg.Tables.Is(groundtruth.Container, tag),
			r.cfg.Tables.Is(groundtruth.Interactive, tag),
			r.tree.HasAttr(id, r.opts.PreserveAttribute):
		default:
			continue
		}
		r.tree.SetAttr(id, UniqueIDAttribute, strconv.Itoa(n))
		n++
	}
}
