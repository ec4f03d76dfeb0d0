package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/groundtruth"
	"github.com/hazyhaar/domsnap/markdown"
	"github.com/hazyhaar/domsnap/textrank"
)

// MarkdownConverter turns content markup into sealed markdown. Elements
// carrying preserveAttr must come back as verbatim markup.
type MarkdownConverter interface {
	Convert(markup, preserveAttr string) (string, error)
}

// TextRanker shortens text, keeping roughly retention of its sentences.
type TextRanker interface {
	Compress(text string, retention float64, opts textrank.Options, preferRenderedText bool) string
}

// SearchConfig holds the adaptive search constants.
type SearchConfig struct {
	// Stretch is the exponent applied to the scale reference after a miss.
	Stretch float64 `yaml:"stretch"`
	// ReferenceDivisor divides the scale reference before sampling.
	ReferenceDivisor float64 `yaml:"reference_divisor"`
	// Bases are the Halton bases for k, l and m.
	Bases [3]int `yaml:"bases"`
	// DefaultMaxTokens applies when a caller passes a budget <= 0.
	DefaultMaxTokens int `yaml:"default_max_tokens"`
	// DefaultMaxIterations applies when a caller passes a cap < 0.
	DefaultMaxIterations int `yaml:"default_max_iterations"`
}

func (c *SearchConfig) defaults() {
	if c.Stretch <= 0 {
		c.Stretch = 1.125
	}
	if c.ReferenceDivisor <= 0 {
		c.ReferenceDivisor = 1e6
	}
	if c.Bases[0] < 2 || c.Bases[1] < 2 || c.Bases[2] < 2 {
		c.Bases = [3]int{7, 3, 3}
	}
	if c.DefaultMaxTokens <= 0 {
		c.DefaultMaxTokens = 32768
	}
	if c.DefaultMaxIterations <= 0 {
		c.DefaultMaxIterations = 5
	}
}

// Config wires the collaborators of a Snapshotter. Zero fields get defaults.
type Config struct {
	Tables   *groundtruth.Tables
	Markdown MarkdownConverter
	Ranker   TextRanker
	Search   SearchConfig
	Metrics  *Metrics
	Logger   *slog.Logger
}

func (c *Config) defaults() {
	if c.Tables == nil {
		c.Tables = groundtruth.Default()
	}
	if c.Markdown == nil {
		c.Markdown = markdown.New()
	}
	if c.Ranker == nil {
		c.Ranker = textrank.Ranker{}
	}
	c.Search.defaults()
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Snapshotter runs the pipeline. It holds no per-run state and is safe for
// concurrent use as long as no two calls share a tree being mutated.
type Snapshotter struct {
	cfg Config
}

// New creates a Snapshotter.
func New(cfg Config) *Snapshotter {
	cfg.defaults()
	return &Snapshotter{cfg: cfg}
}

// Tables returns the ground truth in use.
func (s *Snapshotter) Tables() *groundtruth.Tables { return s.cfg.Tables }

// Meta describes the size of a snapshot.
type Meta struct {
	// OriginalSize is the character count of the pristine root markup.
	OriginalSize int `json:"originalSize"`
	// SnapshotSize is the character count of the transformed inner markup,
	// before pretty-printing and line-break restoration.
	SnapshotSize    int     `json:"snapshotSize"`
	SizeRatio       float64 `json:"sizeRatio"`
	EstimatedTokens int     `json:"estimatedTokens"`
}

// Snapshot is the result of Transform.
type Snapshot struct {
	SerializedHTML string `json:"serializedHtml"`
	Meta           Meta   `json:"meta"`
}

// Transform snapshots the subtree under root. The input tree is never
// modified.
func (s *Snapshotter) Transform(tree *domtree.Tree, root domtree.NodeID, p Params, opts Options) (*Snapshot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !tree.IsElement(root) {
		return nil, fmt.Errorf("%w: root %d is not an element of the tree", ErrUnresolvable, root)
	}
	original, err := tree.Render(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	start := time.Now()
	r := s.newRun(tree, root, p, opts)
	snap, err := r.execute(charCount(original))
	if err != nil {
		s.cfg.Metrics.observeRun("error", 0, time.Since(start))
		return nil, err
	}
	s.cfg.Metrics.observeRun("ok", snap.Meta.SizeRatio, time.Since(start))
	return snap, nil
}

// run is the state of one pipeline execution over a private clone.
type run struct {
	cfg    *Config
	tree   *domtree.Tree
	root   domtree.NodeID
	params Params
	opts   Options
	height int
	scope  []bool
}

func (s *Snapshotter) newRun(tree *domtree.Tree, root domtree.NodeID, p Params, opts Options) *run {
	clone := tree.Clone(root)
	return &run{
		cfg:    &s.cfg,
		tree:   clone,
		root:   clone.Root(),
		params: p,
		opts:   opts,
	}
}

func (r *run) execute(originalSize int) (*Snapshot, error) {
	r.prepare()
	r.markScope(r.root, false)
	if r.opts.AssignUniqueIDs {
		r.assignUniqueIDs()
	}
	r.stage("prepare")

	r.compressText()
	r.stage("text")

	if err := r.dispatchElements(); err != nil {
		return nil, err
	}
	r.stage("elements")

	r.mergeContainers()
	r.stage("containers")

	r.filterAttributes()
	r.stage("attributes")

	return r.assemble(originalSize)
}

func (r *run) stage(name string) {
	if !r.cfg.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	r.cfg.Logger.Debug("snapshot: stage", "stage", name, "nodes", len(r.tree.Walk(r.root, domtree.AllNodes)))
}

// attached reports whether id is still part of the tree under root. Passes
// visit a node list captured before the pass started; nodes removed by an
// earlier visit are skipped.
func (r *run) attached(id domtree.NodeID) bool {
	return r.tree.Attached(r.root, id)
}
