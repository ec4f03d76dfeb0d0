package snapshot

import "github.com/hazyhaar/domsnap/domtree"

// markScope records, top-down from id, which nodes sit inside a preserve
// scope. inherited is the flag of id's parent. Text nodes take the flag of
// their parent element.
func (r *run) markScope(id domtree.NodeID, inherited bool) {
	if n := r.tree.Len(); len(r.scope) < n {
		r.scope = append(r.scope, make([]bool, n-len(r.scope))...)
	}
	in := inherited || r.tree.HasAttr(id, r.opts.PreserveAttribute)
	r.scope[id] = in
	if r.tree.Kind(id) != domtree.ElementNode {
		return
	}
	for _, c := range r.tree.Children(id) {
		r.markScope(c, in)
	}
}

// preserved reports whether id is inside a preserve scope.
func (r *run) preserved(id domtree.NodeID) bool {
	return int(id) < len(r.scope) && r.scope[id]
}
