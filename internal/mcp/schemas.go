package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// guideNameProperty is the optional guide name shared by every tool
var guideNameProperty = map[string]interface{}{
	"type":        "string",
	"description": "Name of the style guide (default: \"default\")",
	"default":     DefaultGuideName,
}

// indexStyleguideTool returns the tool definition for index_styleguide
func indexStyleguideTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_styleguide",
		Description: "Scan stylesheet directories for KSS documentation comments and build a style guide",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"paths": map[string]interface{}{
					"type":        "array",
					"description": "Directories to scan, in order. When a reference is documented twice, the one found last wins. Defaults to the configured paths.",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"name": guideNameProperty,
				"working_dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory stripped from section paths; relative paths resolve against it",
				},
				"skip_errors": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, skip unreadable files instead of failing",
					"default":     false,
				},
			},
		},
	}
}

// getSectionTool returns the tool definition for get_section
func getSectionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_section",
		Description: "Look up a style guide section by reference (e.g. 2.1.3). Unknown references return an empty section with found=false.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": guideNameProperty,
				"reference": map[string]interface{}{
					"type":        "string",
					"description": "Style guide reference, as written after \"Styleguide\" in the comment",
				},
			},
			Required: []string{"reference"},
		},
	}
}

// searchSectionsTool returns the tool definition for search_sections
func searchSectionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_sections",
		Description: "Search style guide sections by keyword or list a section with its subsections",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": guideNameProperty,
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Keywords, or a reference in reference mode",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "keyword (BM25 full-text) or reference (section and descendants)",
					"enum":        []string{"keyword", "reference"},
					"default":     "keyword",
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a style guide",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": guideNameProperty,
			},
		},
	}
}

// listGuidesTool returns the tool definition for list_guides
func listGuidesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_guides",
		Description: "List indexed style guides",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
