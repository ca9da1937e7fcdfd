// Package types provides shared type definitions for the KSS MCP server.
//
// Section is the parsed form of one style guide documentation comment. Its
// Reference is the dotted identifier declared on the comment's last line:
//
//	// Star Button
//	//
//	// A button suitable for giving stars to someone.
//	//
//	// :hover             - Subtle hover highlight.
//	// .stars-given       - A highlight indicating you've already given a star.
//	//
//	// Styleguide 2.1.3.
//
// parses into:
//
//	section := types.Section{
//	    Reference:   "2.1.3",
//	    Title:       "Star Button",
//	    Description: "A button suitable for giving stars to someone.",
//	    Modifiers: []types.Modifier{
//	        {Name: ":hover", Description: "Subtle hover highlight."},
//	        {Name: ".stars-given", Description: "A highlight indicating you've already given a star."},
//	    },
//	}
//
// The zero Section is the blank entry returned for unknown references:
//
//	if section.IsEmpty() {
//	    // render nothing
//	}
//
// Modifier.ClassName converts a modifier into the class attribute used by
// rendered examples:
//
//	types.Modifier{Name: ".stars-given:hover"}.ClassName() // "stars-given pseudo-class-hover"
//
// SearchResult pairs a Section with its rank and a relevance score normalized
// to the [0, 1] range.
package types
