// Package mcp implements the Model Context Protocol (MCP) server for kss-mcp.
//
// The server exposes style guides built from KSS documentation comments to
// AI coding assistants:
//   - index_styleguide: Scan stylesheet directories and build a named style guide
//   - get_section: Look up one section by reference
//   - search_sections: Keyword search, or a section with its subsections
//   - get_status: Check indexing status and statistics
//   - list_guides: List indexed style guides
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries the protocol, so all logging goes to stderr.
//
// # Tool: index_styleguide
//
//	Request:
//	{
//	  "name": "index_styleguide",
//	  "arguments": {
//	    "paths": ["stylesheets", "vendor/css"],
//	    "name": "site",
//	    "skip_errors": false
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "name": "site",
//	  "files_scanned": 42,
//	  "sections_indexed": 118,
//	  "duplicate_references": 1,
//	  "duration_ms": 37
//	}
//
// Paths are scanned in the order given. When two comments document the same
// reference, the one found last wins and the overwrite is counted in
// duplicate_references. Only one build runs at a time; a second call while
// one is running fails with ErrorCodeIndexingInProgress.
//
// # Tool: get_section
//
//	Request:  {"name": "get_section", "arguments": {"reference": "2.1.3"}}
//	Response: {"found": true, "section": {"reference": "2.1.3", "title": "...", ...}}
//
// An unknown reference is not an error. The response carries found=false and
// a section whose fields are all empty.
//
// # Tool: search_sections
//
//	Request:  {"name": "search_sections", "arguments": {"query": "button hover", "limit": 5}}
//
// Mode "keyword" (default) ranks by BM25. Mode "reference" treats the query
// as a reference and returns that section followed by its descendants.
//
// # Error Codes
//
//	-32602  Invalid params
//	-32603  Internal error
//	-32001  Path to index does not exist or is not a directory
//	-32002  Indexing already in progress
//	-32003  Style guide not indexed
//	-32004  Empty query
package mcp
