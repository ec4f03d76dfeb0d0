// CLAUDE:SUMMARY Extractive sentence ranking (TextRank) that keeps the best-ranked fraction of a text.
// Package textrank shortens text by extraction: sentences are ranked with
// TextRank (PageRank over a word-overlap similarity graph) and the best
// ranked ones are kept in their original order.
//
// Compress is deterministic: ties are broken by sentence position.
package textrank

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Options tunes the ranking.
type Options struct {
	// Damping is the PageRank damping factor (default 0.85).
	Damping float64 `json:"damping,omitempty" yaml:"damping"`
	// MaxIterations caps the power iteration (default 100).
	MaxIterations int `json:"maxIterations,omitempty" yaml:"max_iterations"`
	// MaxSentences caps how many leading sentences are ranked (default 64).
	// Sentences past the cap are never kept unless the whole text is.
	MaxSentences int `json:"maxSentences,omitempty" yaml:"max_sentences"`
}

// DefaultOptions returns the default ranking options.
func DefaultOptions() Options {
	return Options{Damping: 0.85, MaxIterations: 100, MaxSentences: 64}
}

// WithDefaults fills zero fields of o from DefaultOptions, so a partial
// Options acts as an override.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Damping <= 0 || o.Damping >= 1 {
		o.Damping = d.Damping
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.MaxSentences <= 0 {
		o.MaxSentences = d.MaxSentences
	}
	return o
}

const convergence = 1e-4

// Ranker adapts Compress to an interface value.
type Ranker struct{}

// Compress implements the snapshot text-ranking collaborator.
func (Ranker) Compress(text string, retention float64, opts Options, preferRenderedText bool) string {
	return Compress(text, retention, opts, preferRenderedText)
}

// Compress keeps ceil(n × retention) of the n sentences of text, chosen by
// rank. A retention of 1 or more returns text unchanged.
//
// With preferRenderedText, whitespace is treated the way a browser renders
// it: runs collapse to one space and a single leading or trailing space is
// kept when the input had one, so inline neighbours stay separated.
func Compress(text string, retention float64, opts Options, preferRenderedText bool) string {
	if retention >= 1 {
		return text
	}
	opts = opts.WithDefaults()

	sentences := Split(text)
	keep := 0
	if retention > 0 {
		keep = int(math.Ceil(float64(len(sentences)) * retention))
	}
	if len(sentences) > opts.MaxSentences {
		sentences = sentences[:opts.MaxSentences]
	}
	if keep > len(sentences) {
		keep = len(sentences)
	}

	var core string
	switch {
	case keep == len(sentences):
		core = strings.Join(sentences, " ")
	case keep > 0:
		core = strings.Join(pick(sentences, rank(sentences, opts), keep), " ")
	}

	if !preferRenderedText {
		return core
	}
	if core == "" {
		if strings.TrimSpace(text) != text {
			return " "
		}
		return ""
	}
	if startsWithSpace(text) {
		core = " " + core
	}
	if endsWithSpace(text) {
		core += " "
	}
	return core
}

// pick returns the keep best-scored sentences in their original order.
func pick(sentences []string, scores []float64, keep int) []string {
	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	chosen := order[:keep]
	sort.Ints(chosen)

	out := make([]string, 0, keep)
	for _, i := range chosen {
		out = append(out, sentences[i])
	}
	return out
}

// rank runs weighted PageRank over the sentence similarity graph.
func rank(sentences []string, opts Options) []float64 {
	n := len(sentences)
	words := make([]map[string]bool, n)
	for i, s := range sentences {
		words[i] = wordSet(s)
	}

	weights := make([][]float64, n)
	outSum := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := similarity(words[i], words[j])
			weights[i][j], weights[j][i] = w, w
			outSum[i] += w
			outSum[j] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1
	}
	next := make([]float64, n)
	d := opts.Damping
	for iter := 0; iter < opts.MaxIterations; iter++ {
		delta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if weights[j][i] == 0 || outSum[j] == 0 {
					continue
				}
				sum += weights[j][i] / outSum[j] * scores[j]
			}
			next[i] = (1 - d) + d*sum
			delta = math.Max(delta, math.Abs(next[i]-scores[i]))
		}
		scores, next = next, scores
		if delta < convergence {
			break
		}
	}
	return scores
}

// similarity is the TextRank overlap measure, with log(1+len) in the
// denominator so one-word sentences do not divide by zero.
func similarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	overlap := 0
	for w := range a {
		if b[w] {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}
	return float64(overlap) / (math.Log1p(float64(len(a))) + math.Log1p(float64(len(b))))
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRightFunc(s, unicode.IsSpace) != s
}
