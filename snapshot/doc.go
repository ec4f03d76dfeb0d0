// CLAUDE:SUMMARY Size-bounded markup snapshots: classify, merge, filter and rewrite a tree under (k, l, m), with an adaptive token-budget search.
// Package snapshot compresses a markup tree into a size-bounded textual
// snapshot for token-limited consumers.
//
// A run works on a private clone of the input tree and applies, in order:
//
//	prepare     drop comments, script/style/link; annotate depth and height
//	unique ids  optional data-uid on container, interactive and preserved elements
//	text        extractive compression of text nodes, retention 1-l
//	elements    content → markdown, interactive untouched, unknown removed
//	containers  merge wrapper containers at a cadence derived from k and height
//	attributes  drop attributes scoring below m
//	assemble    serialise inner markup, restore line breaks, compute metrics
//
// Elements carrying the preserve attribute, and everything below them, are
// exempt from every lossy pass.
//
// AdaptiveTransform searches (k, l, m) with a Halton sequence until the
// snapshot fits a token budget or the iteration cap is exhausted.
//
// Usage:
//
//	s := snapshot.New(snapshot.Config{Logger: logger})
//	snap, err := s.Transform(tree, tree.Root(), snapshot.Params{K: 0.3, L: 0.3, M: 0.3}, snapshot.DefaultOptions())
//	adapt, err := s.AdaptiveTransform(tree, tree.Root(), 4096, 5, snapshot.DefaultOptions())
//	s.RegisterMCP(mcpServer, snapshot.DefaultOptions())
package snapshot
