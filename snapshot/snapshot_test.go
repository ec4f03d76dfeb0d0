package snapshot

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/textrank"
)

const page = `<!DOCTYPE html><html><head><title>Pizza</title><style>p{}</style></head>` +
	`<body><!-- nav --><div class="wrap" onclick="go()"><nav id="top"><div><a href="/menu" class="nav-link">Menu</a></div></nav>` +
	`<main><section><div><h2>Our pizzas</h2><p>Fresh dough every day. Wood fired oven.</p></div></section>` +
	`<div data-preserve=""><span class="price">$9</span><em>Daily</em></div></main></div><script>go()</script></body></html>`

// fakeMarkdown returns a fixed markdown string for every content element.
type fakeMarkdown struct {
	out string
	err error
}

func (f fakeMarkdown) Convert(string, string) (string, error) { return f.out, f.err }

// prefixRanker keeps the leading retention fraction of the bytes of a text.
type prefixRanker struct{}

func (prefixRanker) Compress(text string, retention float64, _ textrank.Options, _ bool) string {
	return text[:int(float64(len(text))*retention)]
}

func parse(t *testing.T, markup string) *domtree.Tree {
	t.Helper()
	tree, err := domtree.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

// find returns the first element with the given tag and id attribute.
func find(t *testing.T, tree *domtree.Tree, tag, id string) domtree.NodeID {
	t.Helper()
	for _, n := range tree.Walk(tree.Root(), domtree.ElementNode) {
		if tree.Tag(n) != tag {
			continue
		}
		if v, _ := tree.Attr(n, "id"); v == id {
			return n
		}
	}
	t.Fatalf("no <%s id=%q>", tag, id)
	return domtree.None
}

func transform(t *testing.T, s *Snapshotter, markup string, p Params, opts Options) *Snapshot {
	t.Helper()
	tree := parse(t, markup)
	snap, err := s.Transform(tree, tree.Root(), p, opts)
	if err != nil {
		t.Fatalf("Transform(%v): %v", p, err)
	}
	return snap
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		p    Params
		name string
	}{
		{Params{K: -0.1, L: 0, M: 0}, "k"},
		{Params{K: 0, L: 1.5, M: 0}, "l"},
		{Params{K: 0, L: 0, M: math.NaN()}, "m"},
		{Params{K: math.Inf(-1), L: 0, M: 0}, "k"},
		{Params{K: 2, L: 0, M: 0}, "k"},
	}
	for _, tt := range tests {
		err := tt.p.Validate()
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Validate(%v) = %v, want ErrInvalidParameter", tt.p, err)
			continue
		}
		var pe *ParamError
		if !errors.As(err, &pe) || pe.Name != tt.name {
			t.Errorf("Validate(%v): param error %v, want name %q", tt.p, err, tt.name)
		}
	}

	for _, p := range []Params{{0, 0, 0}, {1, 1, 1}, {Linearize, 0.5, 1}} {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%v) = %v", p, err)
		}
	}
}

func TestTransform_InvalidParamsLeaveInputUntouched(t *testing.T) {
	tree := parse(t, page)
	before := tree.MustRender(tree.Root())

	_, err := New(Config{}).Transform(tree, tree.Root(), Params{K: 0.5, L: 0.5, M: 7}, DefaultOptions())
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("got %v", err)
	}
	if tree.MustRender(tree.Root()) != before {
		t.Fatal("input mutated")
	}
}

func TestTransform_Unresolvable(t *testing.T) {
	s := New(Config{})
	if _, err := s.Transform(nil, 0, Params{}, DefaultOptions()); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("nil tree: got %v", err)
	}

	tree := domtree.New()
	text := tree.NewText("loose")
	if _, err := s.Transform(tree, text, Params{}, DefaultOptions()); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("text root: got %v", err)
	}
	if _, err := s.AdaptiveTransform(tree, domtree.None, 100, 1, DefaultOptions()); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("adaptive: got %v", err)
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	tree := parse(t, page)
	before := tree.MustRender(tree.Root())

	opts := DefaultOptions()
	opts.AssignUniqueIDs = true
	if _, err := New(Config{}).Transform(tree, tree.Root(), Params{K: 1, L: 1, M: 1}, opts); err != nil {
		t.Fatal(err)
	}
	if after := tree.MustRender(tree.Root()); after != before {
		t.Fatalf("input mutated:\nbefore %s\nafter  %s", before, after)
	}
}

func TestTransform_Deterministic(t *testing.T) {
	s := New(Config{})
	for _, p := range []Params{{0.3, 0.3, 0.3}, {0.4, 0.6, 0.8}, {1, 1, 1}, {Linearize, 0, 1}} {
		a := transform(t, s, page, p, DefaultOptions())
		b := transform(t, s, page, p, DefaultOptions())
		if a.SerializedHTML != b.SerializedHTML || a.Meta != b.Meta {
			t.Errorf("%v: runs differ:\n%q\n%q", p, a.SerializedHTML, b.SerializedHTML)
		}
	}
}

func TestTransform_Prepare(t *testing.T) {
	snap := transform(t, New(Config{}), page, Params{}, DefaultOptions())
	for _, gone := range []string{"<script", "<style", "<!--", "<head", "<title", "onclick"} {
		if strings.Contains(snap.SerializedHTML, gone) {
			t.Errorf("output still contains %q:\n%s", gone, snap.SerializedHTML)
		}
	}
}

func TestTransform_PreservedSubtreeVerbatim(t *testing.T) {
	s := New(Config{})
	want := `<div data-preserve=""><span class="price">$9</span><em>Daily</em></div>`

	for _, p := range []Params{{0.3, 0.3, 0.3}, {1, 1, 1}, {Linearize, 1, 1}} {
		snap := transform(t, s, page, p, DefaultOptions())
		if !strings.Contains(snap.SerializedHTML, want) {
			t.Errorf("%v: preserved subtree changed:\n%s", p, snap.SerializedHTML)
		}
	}

	// Custom marker name.
	custom := strings.ReplaceAll(page, "data-preserve", "data-keep")
	opts := DefaultOptions()
	opts.PreserveAttribute = "data-keep"
	snap := transform(t, s, custom, Params{K: 1, L: 1, M: 1}, opts)
	if !strings.Contains(snap.SerializedHTML, `<span class="price">$9</span>`) {
		t.Errorf("custom marker not honoured:\n%s", snap.SerializedHTML)
	}
}

func TestTransform_PreservedInsideContent(t *testing.T) {
	const in = `<html><body><div class="outer"><section id="s">` +
		`<p>Intro <span data-preserve="" class="tag" title="t">a  &amp;  b</span> end.</p>` +
		`</section></div></body></html>`
	opts := DefaultOptions()
	opts.AssignUniqueIDs = true

	snap := transform(t, New(Config{}), in, Params{K: 1, L: 0, M: 1}, opts)
	out := snap.SerializedHTML

	kept := regexp.MustCompile(`<span data-preserve="" class="tag" title="t" data-uid="\d+">a  &amp;  b</span>`)
	if !kept.MatchString(out) {
		t.Fatalf("preserved span not verbatim:\n%s", out)
	}
	if strings.Contains(out, "<p") {
		t.Fatalf("paragraph not converted:\n%s", out)
	}
	if strings.Contains(out, "<div") || strings.Contains(out, "<section") || strings.Contains(out, `class="outer"`) {
		t.Fatalf("containers not merged and filtered:\n%s", out)
	}
	if !strings.Contains(out, "Intro <span") || !strings.Contains(out, "</span> end.") {
		t.Fatalf("surrounding text lost:\n%s", out)
	}
}

func TestTransform_EmptyPreserveAttributeDisables(t *testing.T) {
	opts := DefaultOptions()
	opts.PreserveAttribute = ""
	snap := transform(t, New(Config{}), page, Params{K: 0, L: 0, M: 0}, opts)
	if strings.Contains(snap.SerializedHTML, "<span") || strings.Contains(snap.SerializedHTML, "<em") {
		t.Fatalf("content under the marker should be converted:\n%s", snap.SerializedHTML)
	}
	if !strings.Contains(snap.SerializedHTML, "$9") {
		t.Fatalf("text lost:\n%s", snap.SerializedHTML)
	}
}

var uidPattern = regexp.MustCompile(`data-uid="(\d+)"`)

func TestTransform_UniqueIDs(t *testing.T) {
	opts := DefaultOptions()
	opts.AssignUniqueIDs = true
	// k=0 disables merging so every numbered element survives in place.
	snap := transform(t, New(Config{}), page, Params{K: 0, L: 0, M: 1}, opts)

	var got []int
	for _, m := range uidPattern.FindAllStringSubmatch(snap.SerializedHTML, -1) {
		n, _ := strconv.Atoi(m[1])
		got = append(got, n)
	}
	// body, div.wrap, nav, div, a, main, section, div, div[data-preserve]
	if len(got) != 9 {
		t.Fatalf("got ids %v, want 9:\n%s", got, snap.SerializedHTML)
	}
	for i, n := range got {
		if n != i {
			t.Fatalf("ids %v not 0..8 in document order", got)
		}
	}
	if !strings.Contains(snap.SerializedHTML, `<a data-uid="4">Menu</a>`) {
		t.Errorf("anchor lost its id:\n%s", snap.SerializedHTML)
	}
}

func TestTransform_AttributeThreshold(t *testing.T) {
	s := New(Config{})
	low := transform(t, s, page, Params{K: 0, L: 0, M: 0.5}, DefaultOptions()).SerializedHTML
	if !strings.Contains(low, `href="/menu"`) || !strings.Contains(low, `id="top"`) {
		t.Errorf("m=0.5 dropped high-value attributes:\n%s", low)
	}
	if strings.Contains(low, "onclick") {
		t.Errorf("unknown attribute kept:\n%s", low)
	}

	high := transform(t, s, page, Params{K: 0, L: 0, M: 0.95}, DefaultOptions()).SerializedHTML
	if strings.Contains(high, "href=") || strings.Contains(high, `class="wrap"`) {
		t.Errorf("m=0.95 kept low-value attributes:\n%s", high)
	}
	if !strings.Contains(high, `data-preserve=""`) {
		t.Errorf("preserve marker removed:\n%s", high)
	}
}

func TestTransform_UnknownElements(t *testing.T) {
	const doc = `<html><body><div><custom-box>kept?</custom-box><button>Go</button></div></body></html>`
	s := New(Config{})

	snap := transform(t, s, doc, Params{}, DefaultOptions())
	if strings.Contains(snap.SerializedHTML, "custom-box") || strings.Contains(snap.SerializedHTML, "kept?") {
		t.Errorf("unknown element kept:\n%s", snap.SerializedHTML)
	}
	if !strings.Contains(snap.SerializedHTML, "<button>Go</button>") {
		t.Errorf("interactive element touched:\n%s", snap.SerializedHTML)
	}

	opts := DefaultOptions()
	opts.KeepUnknownElements = true
	snap = transform(t, s, doc, Params{}, opts)
	if !strings.Contains(snap.SerializedHTML, "<custom-box>kept?</custom-box>") {
		t.Errorf("unknown element removed with KeepUnknownElements:\n%s", snap.SerializedHTML)
	}
}

func TestTransform_ContentToMarkdown(t *testing.T) {
	snap := transform(t, New(Config{}), page, Params{}, DefaultOptions())
	out := snap.SerializedHTML
	if !strings.Contains(out, "## Our pizzas\n") {
		t.Errorf("heading not converted:\n%s", out)
	}
	if strings.Contains(out, "<h2") || strings.Contains(out, "<p>") {
		t.Errorf("content markup left:\n%s", out)
	}
	if strings.Contains(out, "@@@") {
		t.Errorf("line-break sentinel left:\n%s", out)
	}

	opts := DefaultOptions()
	opts.SkipMarkdownTranslation = true
	snap = transform(t, New(Config{}), page, Params{}, opts)
	if !strings.Contains(snap.SerializedHTML, "<h2>Our pizzas</h2>") {
		t.Errorf("SkipMarkdownTranslation converted content:\n%s", snap.SerializedHTML)
	}
}

func TestTransform_MarkdownErrorPropagates(t *testing.T) {
	errConv := errors.New("converter down")
	s := New(Config{Markdown: fakeMarkdown{err: errConv}})
	tree := parse(t, page)
	if _, err := s.Transform(tree, tree.Root(), Params{}, DefaultOptions()); !errors.Is(err, errConv) {
		t.Fatalf("got %v", err)
	}
}

func TestTransform_CollapsesBlankLines(t *testing.T) {
	s := New(Config{Markdown: fakeMarkdown{out: "A@@@@@@  @@@B@@@"}})
	snap := transform(t, s, `<html><body><div><p>x</p></div></body></html>`, Params{}, DefaultOptions())
	if snap.SerializedHTML != "<body><div>A\nB\n</div></body>" {
		t.Fatalf("got %q", snap.SerializedHTML)
	}
}

func TestTransform_Meta(t *testing.T) {
	const doc = `<html><head></head><body><div>hello</div></body></html>`
	snap := transform(t, New(Config{}), doc, Params{}, DefaultOptions())

	if snap.SerializedHTML != "<body><div>hello</div></body>" {
		t.Fatalf("got %q", snap.SerializedHTML)
	}
	want := Meta{OriginalSize: 55, SnapshotSize: 29, SizeRatio: 29.0 / 55.0, EstimatedTokens: 7}
	if snap.Meta != want {
		t.Fatalf("meta %+v, want %+v", snap.Meta, want)
	}
}

func TestTransform_LinearizeStripsWrapper(t *testing.T) {
	snap := transform(t, New(Config{}), page, Params{K: Linearize, L: 0, M: 0.5}, DefaultOptions())
	out := snap.SerializedHTML
	if strings.HasPrefix(out, "<body") || strings.HasSuffix(out, "</body>") {
		t.Fatalf("wrapper not stripped:\n%s", out)
	}
	for _, gone := range []string{"<nav", "<main", "<section", `class="wrap"`} {
		// Merged away or folded into the stripped wrapper.
		if strings.Contains(out, gone) {
			t.Errorf("linearized output still contains %q:\n%s", gone, out)
		}
	}
	if !strings.Contains(out, `<a href="/menu" class="nav-link">Menu</a>`) {
		t.Errorf("link lost:\n%s", out)
	}
}

func TestTransform_KZeroKeepsContainers(t *testing.T) {
	snap := transform(t, New(Config{}), page, Params{K: 0, L: 0, M: 0}, DefaultOptions())
	for _, tag := range []string{"<body", "<div", "<nav", "<main", "<section"} {
		if !strings.Contains(snap.SerializedHTML, tag) {
			t.Errorf("k=0 merged %s away:\n%s", tag, snap.SerializedHTML)
		}
	}
	if n := strings.Count(snap.SerializedHTML, "<div"); n != 4 {
		t.Errorf("got %d divs, want 4", n)
	}
}

func TestTransform_TextCompression(t *testing.T) {
	s := New(Config{Ranker: prefixRanker{}})
	const doc = `<html><body><div>abcdefghij</div></body></html>`

	if got := transform(t, s, doc, Params{L: 0}, DefaultOptions()).SerializedHTML; got != "<body><div>abcdefghij</div></body>" {
		t.Errorf("l=0: %q", got)
	}
	if got := transform(t, s, doc, Params{L: 0.7}, DefaultOptions()).SerializedHTML; got != "<body><div>abc</div></body>" {
		t.Errorf("l=0.7: %q", got)
	}
}

func TestFormatHTML(t *testing.T) {
	in := `<div class="a"> <p>one</p><br/><span>two</span>tail</div>`
	want := strings.Join([]string{
		`<div class="a">`,
		`  <p>`,
		`    one`,
		`  </p>`,
		`  <br/>`,
		`  <span>`,
		`    two`,
		`  </span>`,
		`  tail`,
		`</div>`,
	}, "\n")
	if got := FormatHTML(in, 2); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestTransform_Debug(t *testing.T) {
	opts := DefaultOptions()
	opts.Debug = true
	snap := transform(t, New(Config{}), `<html><body><div><div>x</div></div></body></html>`, Params{}, opts)
	want := "<body>\n  <div>\n    <div>\n      x\n    </div>\n  </div>\n</body>"
	if snap.SerializedHTML != want {
		t.Fatalf("got\n%s", snap.SerializedHTML)
	}
	if snap.Meta.SnapshotSize != len("<body><div><div>x</div></div></body>") {
		t.Fatalf("pretty-printing changed snapshot size: %d", snap.Meta.SnapshotSize)
	}
}
