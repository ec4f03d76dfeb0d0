// CLAUDE:SUMMARY Acquires page markup from a file, stdin, an HTTP GET or headless Chrome, with optional sanitising.
// Package source acquires the markup a snapshot is taken from. A reference is
// a file path, "-" for standard input, or an http(s) URL. URLs are fetched
// with a plain GET first; when the body looks like a script-rendered shell
// and a browser is configured, the page is rendered in headless Chrome.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/groundtruth"
)

var (
	// ErrTooLarge is returned when a document exceeds Config.MaxBytes.
	ErrTooLarge = errors.New("source: document too large")
	// ErrStatus is returned for non-2xx HTTP responses.
	ErrStatus = errors.New("source: unexpected status")
)

// Config configures a Loader.
type Config struct {
	// UserAgent sent with HTTP requests.
	UserAgent string `yaml:"user_agent"`
	// Timeout of an HTTP fetch. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
	// MaxBytes caps a document. Default: 10 MiB.
	MaxBytes int64 `yaml:"max_bytes"`
	// DenyPrivate refuses URLs, redirects included, that point at private
	// or loopback addresses.
	DenyPrivate bool `yaml:"deny_private"`
	// Sanitize runs fetched markup through the sanitising policy.
	Sanitize bool `yaml:"-"`
	// PreserveAttribute survives sanitising.
	PreserveAttribute string `yaml:"-"`

	// Tables drive the sanitising policy. Default: groundtruth.Default().
	Tables *groundtruth.Tables `yaml:"-"`
	// Browser renders pages that need script. Nil disables rendering.
	Browser *Browser     `yaml:"-"`
	Client  *http.Client `yaml:"-"`
	Stdin   io.Reader    `yaml:"-"`
	Logger  *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; domsnap/1.0)"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
	if c.Tables == nil {
		c.Tables = groundtruth.Default()
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
		if c.DenyPrivate {
			c.Client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				return ValidateURL(req.URL.String())
			}
		}
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Document is acquired markup.
type Document struct {
	Ref      string
	HTML     string
	Rendered bool
}

// Parse parses the document into a tree.
func (d *Document) Parse() (*domtree.Tree, error) {
	t, err := domtree.ParseString(d.HTML)
	if err != nil {
		return nil, fmt.Errorf("source: parse %s: %w", d.Ref, err)
	}
	return t, nil
}

// Loader acquires documents.
type Loader struct {
	cfg    Config
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg Config) *Loader {
	cfg.defaults()
	return &Loader{cfg: cfg, logger: cfg.Logger}
}

// Load reads ref, which is "-", an http(s) URL or a file path.
func (l *Loader) Load(ctx context.Context, ref string) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch {
	case ref == "-":
		doc, err = l.read("stdin", l.cfg.Stdin)
	case isURL(ref):
		doc, err = l.fetch(ctx, ref)
	default:
		doc, err = l.readFile(ref)
	}
	if err != nil {
		return nil, err
	}
	if l.cfg.Sanitize {
		doc.HTML = Sanitize(doc.HTML, l.cfg.Tables, l.cfg.PreserveAttribute)
	}
	return doc, nil
}

// Render loads url through the browser.
func (l *Loader) Render(ctx context.Context, url string) (*Document, error) {
	if l.cfg.Browser == nil {
		return nil, ErrNoBrowser
	}
	if err := l.guard(url); err != nil {
		return nil, err
	}
	markup, err := l.cfg.Browser.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	if int64(len(markup)) > l.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, l.cfg.MaxBytes)
	}
	doc := &Document{Ref: url, HTML: markup, Rendered: true}
	if l.cfg.Sanitize {
		doc.HTML = Sanitize(doc.HTML, l.cfg.Tables, l.cfg.PreserveAttribute)
	}
	return doc, nil
}

func (l *Loader) readFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open: %w", err)
	}
	defer f.Close()
	return l.read(path, f)
}

func (l *Loader) read(ref string, r io.Reader) (*Document, error) {
	body, err := io.ReadAll(io.LimitReader(r, l.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", ref, err)
	}
	if int64(len(body)) > l.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, ref, l.cfg.MaxBytes)
	}
	return &Document{Ref: ref, HTML: string(body)}, nil
}

func (l *Loader) guard(url string) error {
	if !l.cfg.DenyPrivate {
		return nil
	}
	return ValidateURL(url)
}

func (l *Loader) fetch(ctx context.Context, url string) (*Document, error) {
	if err := l.guard(url); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: new request: %w", err)
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := l.cfg.Client.Do(req)
	if err != nil {
		if errors.Is(err, ErrUnsafeURL) {
			return nil, err
		}
		return nil, fmt.Errorf("source: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, url, resp.StatusCode)
	}
	doc, err := l.read(url, resp.Body)
	if err != nil {
		return nil, err
	}

	sufficient := IsSufficient(doc.HTML)
	l.logger.Debug("source: fetched",
		"url", url, "status", resp.StatusCode, "size", len(doc.HTML), "sufficient", sufficient)

	if sufficient || l.cfg.Browser == nil {
		return doc, nil
	}
	rendered, err := l.cfg.Browser.Render(ctx, url)
	if err != nil {
		l.logger.Warn("source: render failed, using fetched markup", "url", url, "error", err)
		return doc, nil
	}
	if int64(len(rendered)) > l.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, l.cfg.MaxBytes)
	}
	return &Document{Ref: url, HTML: rendered, Rendered: true}, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
