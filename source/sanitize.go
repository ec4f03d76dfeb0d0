package source

import (
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/domsnap/groundtruth"
)

// documentTags frame the document and are not classified.
var documentTags = []string{"html", "head", "title", "meta"}

// ariaAttributes stand in for the "aria-*" pattern, which bluemonday cannot
// express by name.
var ariaAttributes = []string{
	"aria-label", "aria-labelledby", "aria-describedby", "aria-hidden",
	"aria-expanded", "aria-controls", "aria-current", "aria-selected",
	"aria-checked", "aria-disabled", "aria-haspopup", "aria-pressed",
	"aria-live", "aria-role",
}

// Policy returns a bluemonday policy that keeps every tag and attribute the
// tables know about, data-* attributes and preserveAttr. Script and style
// content, comments, inline styles and event handlers are dropped.
func Policy(tables *groundtruth.Tables, preserveAttr string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowDataAttributes()

	tags := append([]string{}, documentTags...)
	for tag := range tables.Container {
		tags = append(tags, tag)
	}
	tags = append(tags, tables.Interactive...)
	tags = append(tags, tables.Content...)
	sort.Strings(tags)
	p.AllowElements(tags...)

	var attrs []string
	for name := range tables.Attributes {
		if strings.HasPrefix(name, "aria-") && strings.HasSuffix(name, "*") {
			attrs = append(attrs, ariaAttributes...)
			continue
		}
		if strings.HasSuffix(name, "*") || strings.HasPrefix(name, "on") || name == "style" {
			continue
		}
		attrs = append(attrs, name)
	}
	if preserveAttr != "" {
		attrs = append(attrs, preserveAttr)
	}
	sort.Strings(attrs)
	p.AllowAttrs(attrs...).Globally()
	return p
}

// Sanitize cleans markup with Policy.
func Sanitize(markup string, tables *groundtruth.Tables, preserveAttr string) string {
	return Policy(tables, preserveAttr).Sanitize(markup)
}
