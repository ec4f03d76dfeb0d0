package snapshot

import (
	"regexp"
	"strings"
)

var (
	interTagSpace = regexp.MustCompile(`>\s+<`)
	tagToken      = regexp.MustCompile(`<[^>]+>`)
	tagName       = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9-]*)`)
)

// voidTags never have a closing tag, so they never open a level.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// FormatHTML pretty-prints serialised markup, one tag or text run per line,
// indented by indent spaces per open element.
func FormatHTML(markup string, indent int) string {
	markup = strings.TrimSpace(interTagSpace.ReplaceAllString(markup, "><"))
	pad := strings.Repeat(" ", indent)

	var lines []string
	level := 0
	emit := func(tok string) {
		lines = append(lines, strings.Repeat(pad, level)+tok)
	}

	last := 0
	for _, loc := range tagToken.FindAllStringIndex(markup, -1) {
		if text := strings.TrimSpace(markup[last:loc[0]]); text != "" {
			emit(text)
		}
		tok := markup[loc[0]:loc[1]]
		last = loc[1]

		switch {
		case strings.HasPrefix(tok, "</"):
			level = max(level-1, 0)
			emit(tok)
		case strings.HasSuffix(tok, "/>"), strings.HasPrefix(tok, "<!"):
			emit(tok)
		default:
			emit(tok)
			if m := tagName.FindStringSubmatch(tok); m != nil && !voidTags[strings.ToLower(m[1])] {
				level++
			}
		}
	}
	if text := strings.TrimSpace(markup[last:]); text != "" {
		emit(text)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
