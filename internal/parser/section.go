package parser

import (
	"regexp"
	"strings"

	"github.com/dshills/kss-mcp/pkg/types"
)

var (
	// sectionPattern captures the reference declared by the trailer paragraph.
	// It matches the same "Styleguide <digit>" text the classifier looks for.
	sectionPattern = regexp.MustCompile(`Styleguide (\d\S*)`)

	// modifierPattern matches one "name - description" modifier line
	modifierPattern = regexp.MustCompile(`^\s*(\S+)\s+-\s+(.*\S)\s*$`)
)

// SectionParser turns a documentation block into a types.Section
type SectionParser struct{}

// NewSectionParser creates a new SectionParser
func NewSectionParser() *SectionParser {
	return &SectionParser{}
}

// ParseSection parses a documentation block found in file base inside
// directory dir. Blocks without a reference trailer yield the blank section.
func (p *SectionParser) ParseSection(block, dir, base string) types.Section {
	paragraphs := Paragraphs(block)
	if len(paragraphs) == 0 {
		return types.Section{}
	}

	last := len(paragraphs) - 1
	reference := extractReference(paragraphs[last])
	if reference == "" {
		return types.Section{}
	}

	section := types.Section{
		Reference: reference,
		Raw:       block,
		Filename:  base,
		Path:      dir,
	}

	body := paragraphs[:last]
	if len(body) == 0 {
		return section
	}

	modifiersAt := -1
	for i := 1; i < len(body); i++ {
		if mods, ok := parseModifiers(body[i]); ok {
			section.Modifiers = mods
			modifiersAt = i
			break
		}
	}

	title, rest, _ := strings.Cut(body[0], "\n")
	section.Title = strings.TrimSpace(title)

	var description []string
	if rest = strings.TrimSpace(rest); rest != "" {
		description = append(description, rest)
	}
	for i := 1; i < len(body); i++ {
		if i == modifiersAt {
			continue
		}
		description = append(description, body[i])
	}
	section.Description = strings.Join(description, "\n\n")

	return section
}

// extractReference returns the reference named by a trailer paragraph with
// any sentence-ending period removed ("Styleguide 2.1.1." -> "2.1.1")
func extractReference(paragraph string) string {
	match := sectionPattern.FindStringSubmatch(paragraph)
	if match == nil {
		return ""
	}
	return strings.TrimRight(match[1], ".")
}

// parseModifiers parses a paragraph whose every line is a modifier entry
func parseModifiers(paragraph string) ([]types.Modifier, bool) {
	lines := strings.Split(paragraph, "\n")
	mods := make([]types.Modifier, 0, len(lines))

	for _, line := range lines {
		match := modifierPattern.FindStringSubmatch(line)
		if match == nil {
			return nil, false
		}
		mods = append(mods, types.Modifier{
			Name:        match[1],
			Description: match[2],
		})
	}

	return mods, true
}
