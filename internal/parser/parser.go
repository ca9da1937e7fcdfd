package parser

import (
	"path/filepath"

	"github.com/dshills/kss-mcp/pkg/types"
)

// Parser extracts style guide sections from stylesheet sources. It combines
// comment extraction, block classification and section parsing.
type Parser struct {
	comments *CommentExtractor
	sections *SectionParser
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		comments: NewCommentExtractor(),
		sections: NewSectionParser(),
	}
}

// ParseResult represents the sections found in one source file
type ParseResult struct {
	Sections []types.Section

	// Blocks is the number of comment blocks in the file
	Blocks int
	// Rejected counts blocks that looked like documentation but had no usable reference
	Rejected int
}

// ExtractBlocks returns the comment blocks of the file at path
func (p *Parser) ExtractBlocks(path string) ([]string, error) {
	return p.comments.ExtractBlocks(path)
}

// ParseSection parses one documentation block
func (p *Parser) ParseSection(block, dir, base string) types.Section {
	return p.sections.ParseSection(block, dir, base)
}

// ParseFile extracts every documentation section of a single file. dir is
// recorded as the section path; the file's base name is taken from path.
func (p *Parser) ParseFile(path, dir string) (*ParseResult, error) {
	blocks, err := p.ExtractBlocks(path)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Blocks: len(blocks)}
	base := filepath.Base(path)

	for _, block := range blocks {
		if !IsDocumentationBlock(block) {
			continue
		}
		section := p.ParseSection(block, dir, base)
		if section.IsEmpty() {
			result.Rejected++
			continue
		}
		result.Sections = append(result.Sections, section)
	}

	return result, nil
}
