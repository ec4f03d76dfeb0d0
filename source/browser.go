package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrNoBrowser is returned by Loader.Render when no browser is configured.
var ErrNoBrowser = errors.New("source: no browser configured")

// BrowserConfig configures headless Chrome.
type BrowserConfig struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local one.
	RemoteURL string `yaml:"remote_url"`
	// Headful shows the window of a locally launched Chrome.
	Headful bool `yaml:"headful"`
	// Stealth applies the go-rod/stealth evasions to every page.
	Stealth bool `yaml:"stealth"`
	// Timeout of one navigation. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
	// Block lists resource types not loaded: images, fonts, media,
	// stylesheets.
	Block []string `yaml:"block"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *BrowserConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser renders pages in Chrome. Chrome starts on the first Render and is
// shared by later calls. Safe for concurrent use.
type Browser struct {
	cfg BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewBrowser creates a Browser. Nothing is launched until Render.
func NewBrowser(cfg BrowserConfig) *Browser {
	cfg.defaults()
	return &Browser{cfg: cfg}
}

// Render navigates to url, waits for the load event and returns the
// serialised document element.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	rb, err := b.connect()
	if err != nil {
		return "", err
	}

	var page *rod.Page
	if b.cfg.Stealth {
		page, err = stealth.Page(rb)
	} else {
		page, err = rb.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return "", fmt.Errorf("source: create page: %w", err)
	}
	defer page.Close()

	if len(b.cfg.Block) > 0 {
		blockResources(page, b.cfg.Block)
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		return "", fmt.Errorf("source: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.cfg.Logger.Warn("source: wait load", "url", url, "error", err)
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("source: serialise %s: %w", url, err)
	}
	markup := res.Value.Str()
	b.cfg.Logger.Debug("source: rendered", "url", url, "size", len(markup))
	return markup, nil
}

// Close shuts Chrome down.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return err
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("source: browser is closed")
	}
	if b.browser != nil {
		return b.browser, nil
	}

	log := b.cfg.Logger
	var wsURL string
	if b.cfg.RemoteURL != "" {
		u, err := launcher.ResolveURL(b.cfg.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("source: resolve %s: %w", b.cfg.RemoteURL, err)
		}
		wsURL = u
		log.Info("source: connecting to remote chrome", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(!b.cfg.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("source: launch chrome: %w", err)
		}
		wsURL = u
		b.lnch = l
		log.Info("source: launched chrome", "url", wsURL, "stealth", b.cfg.Stealth)
	}

	rb := rod.New().ControlURL(wsURL)
	if err := rb.Connect(); err != nil {
		if b.lnch != nil {
			b.lnch.Cleanup()
			b.lnch = nil
		}
		return nil, fmt.Errorf("source: connect chrome: %w", err)
	}
	b.browser = rb
	return rb, nil
}

// blockResources fails requests whose resource type is listed in types.
func blockResources(page *rod.Page, types []string) {
	blocked := make(map[string]bool, len(types))
	for _, t := range types {
		blocked[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if blocked[resourceName(h.Request.Type())] {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
}

// resourceName maps a CDP resource type to its configuration name.
func resourceName(t proto.NetworkResourceType) string {
	switch name := strings.ToLower(string(t)); name {
	case "image":
		return "images"
	case "font":
		return "fonts"
	case "stylesheet":
		return "stylesheets"
	default:
		return name
	}
}
