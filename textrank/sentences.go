package textrank

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Split breaks text into sentences. A sentence ends at '.', '!', '?', '…'
// or a line break when followed by whitespace or end of text; closing quotes
// and brackets stay with the sentence. Whitespace inside a sentence is
// collapsed to single spaces.
func Split(text string) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(text)

	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		// Swallow repeated terminators and closers: "?!", ".)", "!\"".
		for i+1 < len(runes) && (isTerminator(runes[i+1]) || isCloser(runes[i+1])) {
			i++
			cur.WriteRune(runes[i])
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’':
		return true
	}
	return false
}

// wordSet returns the case-folded words of a sentence.
func wordSet(sentence string) map[string]bool {
	fold := cases.Fold()
	words := strings.FieldsFunc(sentence, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[fold.String(w)] = true
	}
	return set
}
