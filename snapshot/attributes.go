package snapshot

import "github.com/hazyhaar/domsnap/domtree"

// filterAttributes removes, outside preserve scopes, every attribute whose
// score is below m. The preserve attribute itself always stays.
func (r *run) filterAttributes() {
	for _, id := range r.tree.Walk(r.root, domtree.ElementNode) {
		if r.preserved(id) || !r.attached(id) {
			continue
		}
		for _, a := range r.tree.Attrs(id) {
			if a.Name == r.opts.PreserveAttribute {
				continue
			}
			if r.cfg.Tables.AttributeScore(a.Name) >= r.params.M {
				continue
			}
			r.tree.RemoveAttr(id, a.Name)
		}
	}
}
