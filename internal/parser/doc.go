// Package parser extracts style guide documentation from CSS, SASS and SCSS
// comments following the KSS convention.
//
// # Basic Usage
//
//	p := parser.New()
//	result, err := p.ParseFile("/path/to/buttons.scss", "/stylesheets")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, section := range result.Sections {
//	    fmt.Printf("%s: %s\n", section.Reference, section.Title)
//	}
//
// # Documentation Blocks
//
// A comment is a documentation block when the last paragraph of its text,
// comment markers removed, mentions "Styleguide" followed by a space and a
// digit:
//
//	// Buttons
//	//
//	// Styleguide 2.1
//
// Paragraphs are separated by one or more blank lines. Mentions of
// "Styleguide" in earlier paragraphs never qualify a block. A block with a
// single paragraph is tested as a whole.
//
//	parser.IsDocumentationBlock("Some description.\n\nStyleguide 2.1.1") // true
//	parser.IsDocumentationBlock("See Styleguide for details")            // false
//
// # Comment Syntax
//
// CommentExtractor understands "//" runs and "/* */" comments. Consecutive
// "//" lines form one block; any other line ends it. The " * " gutter common in
// multi-line comments is removed, as is indentation shared by all lines.
//
// # Sections
//
// SectionParser reads the title from the first line, modifiers from the
// first later paragraph made only of "name - description" lines, and the
// reference from the trailer. Everything else becomes the description.
package parser
