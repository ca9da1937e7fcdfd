// Package indexer builds the reference-to-section lookup table of a style
// guide from directories of stylesheet sources.
//
// # Basic Usage
//
//	idx := indexer.New()
//
//	index, stats, err := idx.BuildIndex(ctx, []string{"stylesheets"}, &indexer.Config{
//	    WorkingDir: "/srv/site",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	section := index.Lookup("2.1.3")
//	fmt.Printf("%s (%s/%s)\n", section.Title, section.Path, section.Filename)
//
// # Indexing Pipeline
//
// For every regular file below every path, regardless of extension:
//
//  1. Extract: the CommentExtractor returns the file's comment blocks
//  2. Classify: blocks whose last paragraph lacks "Styleguide <digit>" are dropped
//  3. Parse: the SectionParser builds a section, given the file's directory
//     relative to the working directory and its base name
//  4. Insert: the section is stored under its reference
//
// Files with no comment blocks contribute nothing.
//
// # Duplicate References
//
// When two blocks declare the same reference, the one found later in
// traversal order replaces the earlier one. Traversal order is deterministic:
// paths in the order given, each directory tree in lexical order. Every
// replacement is counted in Statistics.DuplicateReferences and logged at debug
// level with both source files.
//
// # Working Directory
//
// Section paths are relative to Config.WorkingDir, which defaults to the
// process working directory at the time of the call:
//
//	/srv/site/stylesheets/forms/inputs.scss  ->  Path "/stylesheets/forms", Filename "inputs.scss"
//
// # Concurrent Processing
//
// Files are extracted by up to Config.Workers goroutines (default NumCPU) but
// a single goroutine inserts into the index, in traversal order.
//
// # Missing References
//
// Lookup never fails. Unknown references return the blank types.Section:
//
//	if s := index.Lookup("9.9"); s.IsEmpty() {
//	    // render blank documentation
//	}
//
// # Error Handling
//
// A file that cannot be read aborts the build with an error naming the file.
// Set Config.SkipErrors to skip such files instead; they are then counted in
// Statistics.FilesFailed and listed in Statistics.ErrorMessages.
package indexer
