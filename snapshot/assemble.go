package snapshot

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/domsnap/markdown"
)

// charsPerToken is the usual rough ratio for English text.
const charsPerToken = 4.0

var (
	blankLines  = regexp.MustCompile(`(\n *)+(\n|$)`)
	leadingTag  = regexp.MustCompile(`^<[^>]+>\s*`)
	trailingTag = regexp.MustCompile(`\s*</[^<]+>$`)
)

// assemble serialises the root's inner markup and computes the metadata.
func (r *run) assemble(originalSize int) (*Snapshot, error) {
	inner, err := r.tree.InnerHTML(r.root)
	if err != nil {
		return nil, fmt.Errorf("snapshot: assemble: %w", err)
	}

	out := inner
	if r.opts.Debug {
		out = FormatHTML(out, 2)
	}
	out = markdown.Unseal(out)
	out = blankLines.ReplaceAllString(out, "$2")
	if r.params.Linearized() && len(r.tree.ElementChildren(r.root)) > 0 {
		out = strings.TrimSpace(out)
		out = leadingTag.ReplaceAllString(out, "")
		out = trailingTag.ReplaceAllString(out, "")
	}

	size := charCount(inner)
	meta := Meta{
		OriginalSize:    originalSize,
		SnapshotSize:    size,
		EstimatedTokens: int(math.Round(float64(size) / charsPerToken)),
	}
	if originalSize > 0 {
		meta.SizeRatio = float64(size) / float64(originalSize)
	}
	return &Snapshot{SerializedHTML: out, Meta: meta}, nil
}

func charCount(s string) int { return utf8.RuneCountInString(s) }
