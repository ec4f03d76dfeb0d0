package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/groundtruth"
)

const article = `<!DOCTYPE html><html><head><title>Pizza</title></head><body><main><article>` +
	`<h1>Wood fired pizza</h1><p>Our dough rests for a full day before it meets the oven. ` +
	`The oven burns oak and reaches four hundred and fifty degrees in under an hour. ` +
	`Every pizza is stretched by hand and baked for ninety seconds, then served at once ` +
	`with basil picked from the garden behind the kitchen.</p></article></main></body></html>`

const shell = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>App</title></head>` +
	`<body><div id="root"></div><script src="/static/js/main.chunk.js"></script>` +
	`<script>window.__INITIAL_STATE__ = {"user": null, "flags": {"beta": true, "dark": false}}</script></body></html>`

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(article), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := NewLoader(Config{}).Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.HTML != article || doc.Ref != path || doc.Rendered {
		t.Fatalf("got %+v", doc)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(Config{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestLoad_Stdin(t *testing.T) {
	l := NewLoader(Config{Stdin: strings.NewReader("<p>piped</p>")})
	doc, err := l.Load(context.Background(), "-")
	if err != nil {
		t.Fatal(err)
	}
	if doc.HTML != "<p>piped</p>" || doc.Ref != "stdin" {
		t.Fatalf("got %+v", doc)
	}
}

func TestLoad_TooLarge(t *testing.T) {
	l := NewLoader(Config{MaxBytes: 8, Stdin: strings.NewReader("<p>123456789</p>")})
	_, err := l.Load(context.Background(), "-")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	l = NewLoader(Config{MaxBytes: 8, Stdin: strings.NewReader("12345678")})
	if _, err := l.Load(context.Background(), "-"); err != nil {
		t.Fatalf("exactly MaxBytes should load: %v", err)
	}
}

func TestLoad_HTTP(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(article))
	}))
	defer srv.Close()

	doc, err := NewLoader(Config{UserAgent: "test-agent"}).Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if doc.HTML != article {
		t.Fatalf("body mismatch: %q", doc.HTML)
	}
	if ua != "test-agent" {
		t.Fatalf("user agent: %q", ua)
	}
}

func TestLoad_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewLoader(Config{}).Load(context.Background(), srv.URL)
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("status missing from %q", err)
	}
}

func TestLoad_ShellWithoutBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(shell))
	}))
	defer srv.Close()

	doc, err := NewLoader(Config{}).Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Rendered || doc.HTML != shell {
		t.Fatalf("expected fetched shell, got %+v", doc)
	}
}

func TestLoad_Sanitize(t *testing.T) {
	in := `<div class="c" onclick="steal()" data-preserve=""><script>bad()</script>` +
		`<a href="/menu" style="color:red">Menu</a><!-- note --></div>`
	l := NewLoader(Config{Sanitize: true, PreserveAttribute: "data-preserve", Stdin: strings.NewReader(in)})
	doc, err := l.Load(context.Background(), "-")
	if err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"onclick", "bad()", "style=", "note"} {
		if strings.Contains(doc.HTML, bad) {
			t.Errorf("sanitised markup still contains %q: %s", bad, doc.HTML)
		}
	}
	for _, good := range []string{`class="c"`, "data-preserve", `<a href="/menu">Menu</a>`} {
		if !strings.Contains(doc.HTML, good) {
			t.Errorf("sanitised markup lost %q: %s", good, doc.HTML)
		}
	}
}

func TestRender_NoBrowser(t *testing.T) {
	_, err := NewLoader(Config{}).Render(context.Background(), "http://example.com")
	if !errors.Is(err, ErrNoBrowser) {
		t.Fatalf("expected ErrNoBrowser, got %v", err)
	}
}

func TestBrowser_Closed(t *testing.T) {
	b := NewBrowser(BrowserConfig{})
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Render(context.Background(), "http://example.com"); err == nil {
		t.Fatal("expected error from closed browser")
	}
}

func TestIsSufficient(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"article", article, true},
		{"spa shell", shell, false},
		{"too short", "<html><body>hi</body></html>", false},
		{"script only", "<html><body><script>" + strings.Repeat("var a = 1;", 100) + "</script></body></html>", false},
	}
	for _, tt := range tests {
		if got := IsSufficient(tt.in); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPolicy_KeepsClassifiedTags(t *testing.T) {
	p := Policy(groundtruth.Default(), "")
	out := p.Sanitize(`<nav><button disabled="">Go</button><h2>T</h2><marquee>x</marquee></nav>`)
	if out != `<nav><button disabled="">Go</button><h2>T</h2>x</nav>` {
		t.Fatalf("got %q", out)
	}
}

const selectPage = `<html><body><div id="app" class="shell wide"><main role="main">` +
	`<section class="menu"><p>a</p></section><section data-preserve=""><p>b</p></section>` +
	`</main></div></body></html>`

func TestSelect(t *testing.T) {
	tree, err := domtree.ParseString(selectPage)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		sel  string
		tag  string
		want string // rendered prefix
	}{
		{"main", "main", `<main role="main">`},
		{"#app", "div", `<div id="app"`},
		{".wide", "div", `<div id="app"`},
		{"div.shell", "div", `<div id="app"`},
		{"section.menu", "section", `<section class="menu">`},
		{"[data-preserve]", "section", `<section data-preserve="">`},
		{"main[role=main]", "main", `<main`},
		{"[role='main'] section p", "p", `<p>a</p>`},
		{"#app p", "p", `<p>a</p>`},
		{"html", "html", `<html>`},
	}
	for _, tt := range tests {
		n, err := Select(tree, tt.sel)
		if err != nil {
			t.Errorf("%q: %v", tt.sel, err)
			continue
		}
		if tree.Tag(n) != tt.tag {
			t.Errorf("%q: tag %q, want %q", tt.sel, tree.Tag(n), tt.tag)
			continue
		}
		if got := tree.MustRender(n); !strings.HasPrefix(got, tt.want) {
			t.Errorf("%q: rendered %q, want prefix %q", tt.sel, got, tt.want)
		}
	}
}

func TestSelect_EmptyAndMissing(t *testing.T) {
	tree, _ := domtree.ParseString(selectPage)
	if n, err := Select(tree, "  "); err != nil || n != tree.Root() {
		t.Fatalf("empty selector: %v %v", n, err)
	}
	if _, err := Select(tree, "aside"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if _, err := Select(tree, "section p.nope"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestSelectAll(t *testing.T) {
	tree, _ := domtree.ParseString(selectPage)
	got := SelectAll(tree, "main section")
	if len(got) != 2 {
		t.Fatalf("got %d matches", len(got))
	}
	if v, _ := tree.Attr(got[0], "class"); v != "menu" {
		t.Fatalf("first match class %q", v)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://93.184.215.14/page", false},
		{"https://[2606:4700::1111]/", false},
		{"ftp://93.184.215.14/data", true},
		{"javascript:alert(1)", true},
		{"file:///etc/passwd", true},
		{"http:///nohost", true},
		{"http://127.0.0.1/admin", true},
		{"http://0.0.0.0/", true},
		{"http://10.0.0.1/internal", true},
		{"http://172.16.0.1/secret", true},
		{"http://192.168.1.1/api", true},
		{"http://169.254.169.254/latest/meta-data", true},
		{"http://100.64.0.1/", true},
		{"http://[::1]/api", true},
		{"http://[fd00::1]/api", true},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error=%v, wantErr=%v", tt.url, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsafeURL) {
			t.Errorf("ValidateURL(%q) = %v, want ErrUnsafeURL", tt.url, err)
		}
	}
}

func TestLoad_DenyPrivate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("loopback server was contacted")
	}))
	defer srv.Close()

	l := NewLoader(Config{DenyPrivate: true})
	if _, err := l.Load(context.Background(), srv.URL); !errors.Is(err, ErrUnsafeURL) {
		t.Fatalf("expected ErrUnsafeURL, got %v", err)
	}

	// Files and stdin are not subject to the guard.
	l = NewLoader(Config{DenyPrivate: true, Stdin: strings.NewReader("<p>ok</p>")})
	if _, err := l.Load(context.Background(), "-"); err != nil {
		t.Fatal(err)
	}
}
