package snapshot

import (
	"math"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/groundtruth"
)

// mergeInterval is the depth cadence of skip points: max(round(h×min(1,k)), 1).
func mergeInterval(height int, k float64) int {
	return max(int(math.Round(float64(height)*math.Min(1, k))), 1)
}

// mergeContainers collapses wrapper containers into their container parent.
// Elements at depth d with (d-1) mod interval == 0 are skip points and stay.
// Visiting follows the document order captured before the pass; depths are
// the ones annotated by prepare.
func (r *run) mergeContainers() {
	interval := mergeInterval(r.height, r.params.K)
	tables := r.cfg.Tables

	for _, id := range r.tree.Walk(r.root, domtree.ElementNode) {
		if !tables.Is(groundtruth.Container, r.tree.Tag(id)) || r.preserved(id) || !r.attached(id) {
			continue
		}
		parent := r.tree.Parent(id)
		if parent == r.root || r.preserved(parent) || !tables.Is(groundtruth.Container, r.tree.Tag(parent)) {
			continue
		}
		if (r.tree.Depth(id)-1)%interval == 0 {
			continue
		}

		if tables.ContainerPriority(r.tree.Tag(parent)) >= tables.ContainerPriority(r.tree.Tag(id)) {
			r.mergeUp(parent, id)
		} else {
			r.mergeDown(id, parent)
		}
	}
}

// unionAttrs gives target the attributes of source it lacks. Values already
// on target win.
func (r *run) unionAttrs(target, source domtree.NodeID) {
	merged := r.tree.Attrs(target)
	for _, a := range r.tree.Attrs(source) {
		if !r.tree.HasAttr(target, a.Name) {
			merged = append(merged, a)
		}
	}
	r.tree.ReplaceAttrs(target, merged)
}

// mergeUp dissolves source into its parent target: the children of source
// take its place, in order.
func (r *run) mergeUp(target, source domtree.NodeID) {
	r.unionAttrs(target, source)
	for _, c := range r.tree.Children(source) {
		r.tree.InsertBefore(target, c, source)
	}
	r.tree.Detach(source)
}

// mergeDown dissolves the parent source into its child target. Siblings of
// target before it are prepended to target's children, siblings after it are
// appended, both in order. target then takes the depth and slot of source.
func (r *run) mergeDown(target, source domtree.NodeID) {
	r.unionAttrs(target, source)

	siblings := r.tree.Children(source)
	pivot := r.tree.IndexOf(source, target)
	first := domtree.None
	if kids := r.tree.Children(target); len(kids) > 0 {
		first = kids[0]
	}
	for _, c := range siblings[:pivot] {
		r.tree.InsertBefore(target, c, first)
	}
	for _, c := range siblings[pivot+1:] {
		r.tree.AppendChild(target, c)
	}

	r.tree.SetDepth(target, r.tree.Depth(source))
	if gp := r.tree.Parent(source); gp != domtree.None {
		r.tree.InsertBefore(gp, target, source)
	}
	r.tree.Detach(source)
}
