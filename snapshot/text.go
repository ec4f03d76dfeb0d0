package snapshot

import "github.com/hazyhaar/domsnap/domtree"

// compressText shortens every text node outside preserve scopes, keeping
// 1-l of its sentences.
func (r *run) compressText() {
	retention := 1 - r.params.L
	for _, id := range r.tree.Walk(r.root, domtree.TextNode) {
		if r.preserved(id) || !r.attached(id) {
			continue
		}
		r.tree.SetText(id, r.cfg.Ranker.Compress(r.tree.Text(id), retention, r.opts.TextRank, true))
	}
}
