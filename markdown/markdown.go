// CLAUDE:SUMMARY html-to-markdown wrapper that keeps links and preserve-marked elements as verbatim markup.
// Package markdown converts content markup to compact markdown for
// snapshots. Links and elements carrying the preserve marker are emitted as
// their original markup; everything else goes through the commonmark and
// table plugins of html-to-markdown.
//
// Output is trimmed and every line break is replaced by LineBreakMark so the
// text survives being parsed back as an HTML fragment. Callers restore real
// newlines on the final serialised snapshot.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// LineBreakMark stands in for "\n" in converted output.
const LineBreakMark = "@@@"

// KeepTags are always emitted as verbatim markup.
var KeepTags = []string{"a"}

// Converter converts markup to sealed markdown. One underlying converter is
// built per preserve attribute name and reused. Safe for concurrent use.
type Converter struct {
	mu     sync.Mutex
	byAttr map[string]*converter.Converter
}

// New creates a Converter.
func New() *Converter {
	return &Converter{byAttr: make(map[string]*converter.Converter)}
}

// Convert turns markup into markdown. Elements carrying preserveAttr (when
// non-empty) and KeepTags elements pass through as markup.
func (c *Converter) Convert(markup, preserveAttr string) (string, error) {
	md, err := c.converterFor(preserveAttr).ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}
	return Seal(strings.TrimSpace(md)), nil
}

// Seal replaces every line break, and the end of md, with LineBreakMark.
func Seal(md string) string {
	return strings.ReplaceAll(md, "\n", LineBreakMark) + LineBreakMark
}

// Unseal restores line breaks.
func Unseal(s string) string {
	return strings.ReplaceAll(s, LineBreakMark, "\n")
}

func (c *Converter) converterFor(preserveAttr string) *converter.Converter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conv, ok := c.byAttr[preserveAttr]; ok {
		return conv
	}
	conv := build(preserveAttr)
	c.byAttr[preserveAttr] = conv
	return conv
}

func build(preserveAttr string) *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	for _, tag := range KeepTags {
		conv.Register.RendererFor(tag, converter.TagTypeInline, renderVerbatim, converter.PriorityEarly)
	}
	if preserveAttr != "" {
		conv.Register.Renderer(func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
			if n.Type != html.ElementNode || !hasAttr(n, preserveAttr) {
				return converter.RenderTryNext
			}
			return renderVerbatim(ctx, w, n)
		}, converter.PriorityEarly)
	}
	return conv
}

func renderVerbatim(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return converter.RenderTryNext
	}
	w.WriteString(buf.String())
	return converter.RenderSuccess
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
