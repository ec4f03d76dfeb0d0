package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/groundtruth"
)

// dispatchElements applies the per-category policy to every element outside
// preserve scopes: content becomes markdown, containers and interactive
// elements are left for later passes, unknown elements are removed.
func (r *run) dispatchElements() error {
	for _, id := range r.tree.Walk(r.root, domtree.ElementNode) {
		if r.preserved(id) || !r.attached(id) {
			continue
		}
		switch r.cfg.Tables.Category(r.tree.Tag(id)) {
		case groundtruth.Container, groundtruth.Interactive:
		case groundtruth.Content:
			if r.opts.SkipMarkdownTranslation {
				continue
			}
			if err := r.reduceContent(id); err != nil {
				return err
			}
		default:
			if !r.opts.KeepUnknownElements {
				r.tree.Detach(id)
			}
		}
	}
	return nil
}

// reduceContent replaces a content element by its markdown rendering.
// Preserved descendants are taken out before conversion and put back as
// their original markup, so the converter never normalises them. Verbatim
// markup inside the markdown (links, preserved elements) is parsed back into
// nodes.
func (r *run) reduceContent(id domtree.NodeID) error {
	kept, err := r.holdPreserved(id)
	if err != nil {
		return fmt.Errorf("snapshot: content: %w", err)
	}
	markup, err := r.tree.Render(id)
	if err != nil {
		return fmt.Errorf("snapshot: content: %w", err)
	}
	md, err := r.cfg.Markdown.Convert(markup, r.opts.PreserveAttribute)
	if err != nil {
		return fmt.Errorf("snapshot: content <%s>: %w", r.tree.Tag(id), err)
	}
	for i, k := range kept {
		md = strings.Replace(md, placeholder(i), k, 1)
	}
	nodes, err := r.tree.ParseFragment(md)
	if err != nil {
		return fmt.Errorf("snapshot: content <%s>: %w", r.tree.Tag(id), err)
	}

	depth := r.tree.Depth(id)
	r.tree.ReplaceWith(id, nodes...)
	for _, n := range nodes {
		if r.tree.IsElement(n) {
			r.annotate(n, depth)
		}
		r.markScope(n, false)
	}
	return nil
}

// holdPreserved swaps every outermost preserved element under id for a
// placeholder text node and returns their markup, indexed like the
// placeholders.
func (r *run) holdPreserved(id domtree.NodeID) ([]string, error) {
	var kept []string
	for _, d := range r.tree.Walk(id, domtree.ElementNode) {
		if !r.preserved(d) || r.preserved(r.tree.Parent(d)) {
			continue
		}
		markup, err := r.tree.Render(d)
		if err != nil {
			return nil, err
		}
		r.tree.ReplaceWith(d, r.tree.NewText(placeholder(len(kept))))
		kept = append(kept, markup)
	}
	return kept, nil
}

// placeholder is a token markdown conversion leaves alone: private use
// runes around a decimal index.
func placeholder(i int) string {
	return "\uE000" + strconv.Itoa(i) + "\uE001"
}
