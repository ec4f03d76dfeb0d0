package source

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Thresholds of IsSufficient.
const (
	minDocumentBytes = 256
	minVisibleText   = 200
	minTextRatio     = 0.10
)

var shellMarkers = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
	"<noscript>you need to enable javascript",
	"<noscript>enable javascript",
}

// IsSufficient reports whether fetched markup carries enough visible text to
// be snapshotted without running its scripts.
func IsSufficient(markup string) bool {
	if len(markup) < minDocumentBytes {
		return false
	}
	lower := strings.ToLower(markup)
	for _, m := range shellMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}

	text, total := visibleText(markup), len(markup)
	return text >= minVisibleText && float64(text)/float64(total) >= minTextRatio
}

// visibleText counts the non-space bytes of text outside script and style.
func visibleText(markup string) int {
	z := html.NewTokenizer(strings.NewReader(markup))
	n, skip := 0, 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return n
		case html.StartTagToken:
			if a := tagAtom(z); a == atom.Script || a == atom.Style {
				skip++
			}
		case html.EndTagToken:
			if a := tagAtom(z); (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			for _, b := range z.Text() {
				if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
					n++
				}
			}
		}
	}
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}
