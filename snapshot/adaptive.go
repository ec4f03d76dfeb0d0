package snapshot

import (
	"fmt"
	"math"
	"time"

	"github.com/hazyhaar/domsnap/domtree"
)

// AdaptiveParameters are the parameters of the attempt that met the budget.
type AdaptiveParameters struct {
	K float64 `json:"k"`
	L float64 `json:"l"`
	M float64 `json:"m"`
	// Iterations counts the failed attempts before the successful one.
	Iterations int `json:"adaptiveIterations"`
}

// AdaptiveSnapshot is the result of AdaptiveTransform.
type AdaptiveSnapshot struct {
	Snapshot
	Parameters AdaptiveParameters `json:"parameters"`
}

// AdaptiveTransform searches (k, l, m) until the snapshot of root fits in
// maxTokens. Attempt n samples the n-th Halton point and scales it by the
// reference S/divisor, where S starts at the size of the root markup and is
// raised to the stretch exponent after every attempt. The search stops with
// a *BudgetError once maxIterations attempts have failed beyond the first.
//
// maxTokens <= 0 and maxIterations < 0 select the configured defaults.
func (s *Snapshotter) AdaptiveTransform(tree *domtree.Tree, root domtree.NodeID, maxTokens, maxIterations int, opts Options) (*AdaptiveSnapshot, error) {
	search := s.cfg.Search
	if maxTokens <= 0 {
		maxTokens = search.DefaultMaxTokens
	}
	if maxIterations < 0 {
		maxIterations = search.DefaultMaxIterations
	}
	if !tree.IsElement(root) {
		return nil, fmt.Errorf("%w: root %d is not an element of the tree", ErrUnresolvable, root)
	}
	original, err := tree.Render(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	start := time.Now()
	scale := float64(charCount(original))
	param := func(h float64) float64 {
		return math.Min(scale/search.ReferenceDivisor*h, 1)
	}

	for failed := 0; ; failed++ {
		point := haltonPoint(failed+1, search.Bases)
		p := Params{K: param(point[0]), L: param(point[1]), M: param(point[2])}

		snap, err := s.Transform(tree, root, p, opts)
		if err != nil {
			return nil, err
		}
		scale = math.Pow(scale, search.Stretch)

		tokens := snap.Meta.EstimatedTokens
		s.cfg.Logger.Info("snapshot: adaptive attempt",
			"attempt", failed+1, "k", p.K, "l", p.L, "m", p.M,
			"tokens", tokens, "max_tokens", maxTokens)

		if tokens <= maxTokens {
			s.cfg.Metrics.observeAdaptive("ok", failed+1, time.Since(start))
			return &AdaptiveSnapshot{
				Snapshot:   *snap,
				Parameters: AdaptiveParameters{K: p.K, L: p.L, M: p.M, Iterations: failed},
			}, nil
		}
		if failed == maxIterations {
			s.cfg.Metrics.observeAdaptive("budget_unreachable", failed+1, time.Since(start))
			return nil, &BudgetError{MaxTokens: maxTokens, Attempts: failed + 1, LastTokens: tokens}
		}
	}
}
