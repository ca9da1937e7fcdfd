package parser

import (
	"regexp"
	"strings"
)

// referencePattern matches the style guide trailer ("Styleguide 2.1.1")
var referencePattern = regexp.MustCompile(`Styleguide \d`)

// IsDocumentationBlock reports whether a comment block, with comment syntax
// already stripped, follows the style guide documentation convention: its last
// paragraph must contain "Styleguide" followed by a space and a digit.
//
// A block without blank-line separators is its own last paragraph, so
// "Styleguide 3" on its own is accepted.
func IsDocumentationBlock(text string) bool {
	return referencePattern.MatchString(LastParagraph(text))
}

// IsDocumentationValue is IsDocumentationBlock for values of unknown type.
// Strings, string pointers and byte slices are classified; anything else,
// including nil, is not a documentation block.
func IsDocumentationValue(v any) bool {
	switch text := v.(type) {
	case string:
		return IsDocumentationBlock(text)
	case *string:
		if text == nil {
			return false
		}
		return IsDocumentationBlock(*text)
	case []byte:
		return IsDocumentationBlock(string(text))
	default:
		return false
	}
}

// Paragraphs splits text into paragraphs separated by runs of blank lines.
// Whitespace-only lines count as blank and any number of consecutive blank
// lines form a single separator. Empty paragraphs are never returned.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return paragraphs
}

// LastParagraph returns the final paragraph of text, or "" if it has none
func LastParagraph(text string) string {
	paragraphs := Paragraphs(text)
	if len(paragraphs) == 0 {
		return ""
	}
	return paragraphs[len(paragraphs)-1]
}
