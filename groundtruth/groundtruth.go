// CLAUDE:SUMMARY Immutable element-category and attribute-score tables with lookup helpers.
// Package groundtruth holds the classification tables that drive snapshot
// reduction: which tags are containers, interactive controls or content, how
// much a container tag is worth when two containers merge, and how much each
// attribute is worth when attributes are filtered.
//
// Tables are plain values. Default returns a fresh copy of the built-in
// tables; LoadFile merges YAML overrides on top of it. A Tables value must not
// be modified once it has been handed to a Snapshotter.
package groundtruth

import (
	"math"
	"sort"
	"strings"
)

// Category is the structural role of an element.
type Category string

const (
	Container   Category = "container"
	Interactive Category = "interactive"
	Content     Category = "content"
	Unknown     Category = "unknown"
)

// NotApplicable is the score of a name missing from the tables. It is lower
// than any threshold in [0, 1].
var NotApplicable = math.Inf(-1)

// Tables is the ground truth used by the classifier.
type Tables struct {
	// Container maps container tags to their semantic priority.
	Container map[string]float64 `yaml:"container" json:"container"`
	// Interactive lists tags that are passed through structurally untouched.
	Interactive []string `yaml:"interactive" json:"interactive"`
	// Content lists tags converted to markdown.
	Content []string `yaml:"content" json:"content"`
	// Attributes maps attribute names to their semantic score. A trailing
	// "*" makes the entry a prefix pattern ("aria-*").
	Attributes map[string]float64 `yaml:"attributes" json:"attributes"`

	categories map[string]Category
	prefixes   []prefixScore
}

type prefixScore struct {
	prefix string
	score  float64
}

// Category returns the category of tag. Unlisted tags are Unknown.
func (t *Tables) Category(tag string) Category {
	t.index()
	if c, ok := t.categories[strings.ToLower(tag)]; ok {
		return c
	}
	return Unknown
}

// Is reports whether tag belongs to category c.
func (t *Tables) Is(c Category, tag string) bool {
	return t.Category(tag) == c
}

// ContainerPriority returns the merge priority of a container tag, or
// NotApplicable for anything else.
func (t *Tables) ContainerPriority(tag string) float64 {
	if tag == "" {
		return NotApplicable
	}
	if v, ok := t.Container[strings.ToLower(tag)]; ok {
		return v
	}
	return NotApplicable
}

// AttributeScore returns the semantic score of an attribute name. Exact
// entries win over prefix patterns; among patterns the longest prefix wins.
func (t *Tables) AttributeScore(name string) float64 {
	if name == "" {
		return NotApplicable
	}
	t.index()
	name = strings.ToLower(name)
	if v, ok := t.Attributes[name]; ok && !strings.HasSuffix(name, "*") {
		return v
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.score
		}
	}
	return NotApplicable
}

// index builds the lookup structures on first use. Tables built by Default,
// Merge or LoadFile are indexed eagerly, so concurrent readers never race here.
func (t *Tables) index() {
	if t.categories != nil {
		return
	}
	cats := make(map[string]Category, len(t.Container)+len(t.Interactive)+len(t.Content))
	for _, tag := range t.Content {
		cats[strings.ToLower(tag)] = Content
	}
	for _, tag := range t.Interactive {
		cats[strings.ToLower(tag)] = Interactive
	}
	for tag := range t.Container {
		cats[strings.ToLower(tag)] = Container
	}

	var prefixes []prefixScore
	for name, v := range t.Attributes {
		if p, ok := strings.CutSuffix(strings.ToLower(name), "*"); ok {
			prefixes = append(prefixes, prefixScore{prefix: p, score: v})
		}
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i].prefix) != len(prefixes[j].prefix) {
			return len(prefixes[i].prefix) > len(prefixes[j].prefix)
		}
		return prefixes[i].prefix < prefixes[j].prefix
	})

	t.prefixes = prefixes
	t.categories = cats
}

// Merge returns a new Tables with override entries layered on top of t.
// Container and attribute scores are replaced per key; a non-empty
// Interactive or Content list in override replaces the list in t.
func (t *Tables) Merge(override *Tables) *Tables {
	out := &Tables{
		Container:   make(map[string]float64, len(t.Container)),
		Interactive: append([]string(nil), t.Interactive...),
		Content:     append([]string(nil), t.Content...),
		Attributes:  make(map[string]float64, len(t.Attributes)),
	}
	for k, v := range t.Container {
		out.Container[k] = v
	}
	for k, v := range t.Attributes {
		out.Attributes[k] = v
	}
	if override != nil {
		for k, v := range override.Container {
			out.Container[strings.ToLower(k)] = v
		}
		for k, v := range override.Attributes {
			out.Attributes[strings.ToLower(k)] = v
		}
		if len(override.Interactive) > 0 {
			out.Interactive = append([]string(nil), override.Interactive...)
		}
		if len(override.Content) > 0 {
			out.Content = append([]string(nil), override.Content...)
		}
	}
	out.index()
	return out
}
