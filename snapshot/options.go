package snapshot

import "github.com/hazyhaar/domsnap/textrank"

const (
	// UniqueIDAttribute carries the document-order id of an element.
	UniqueIDAttribute = "data-uid"
	// DefaultPreserveAttribute marks a subtree as exempt from lossy passes.
	DefaultPreserveAttribute = "data-preserve"
)

// Options tunes a run. Start from DefaultOptions: the zero value has an
// empty PreserveAttribute, which disables preserve scopes.
type Options struct {
	AssignUniqueIDs         bool             `json:"assignUniqueIDs" yaml:"assign_unique_ids"`
	Debug                   bool             `json:"debug" yaml:"debug"`
	KeepUnknownElements     bool             `json:"keepUnknownElements" yaml:"keep_unknown_elements"`
	PreserveAttribute       string           `json:"preserveAttribute" yaml:"preserve_attribute"`
	SkipMarkdownTranslation bool             `json:"skipMarkdownTranslation" yaml:"skip_markdown_translation"`
	TextRank                textrank.Options `json:"textRankOptions" yaml:"text_rank"`
}

// DefaultOptions returns the options used when a caller sets nothing.
func DefaultOptions() Options {
	return Options{PreserveAttribute: DefaultPreserveAttribute}
}
