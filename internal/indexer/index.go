package indexer

import (
	"sort"

	"github.com/dshills/kss-mcp/pkg/types"
)

// Index maps style guide references to their sections.
//
// A reference maps to at most one section. Inserting a section whose
// reference is already present replaces the stored one: the last write wins.
// BuildIndex applies sections in traversal order, so the winner of a
// duplicate reference is the block found last in that order.
//
// An Index returned by BuildIndex is not modified afterwards and is safe for
// concurrent reads.
type Index struct {
	sections map[string]types.Section
}

// NewIndex creates an empty Index
func NewIndex() *Index {
	return &Index{sections: make(map[string]types.Section)}
}

// NewIndexFromSections builds an Index from previously indexed sections,
// applied in order with the same last-write-wins rule as BuildIndex.
// Sections with an empty reference are skipped.
func NewIndexFromSections(sections []types.Section) *Index {
	ix := NewIndex()
	for _, section := range sections {
		if section.Reference == "" {
			continue
		}
		ix.put(section)
	}
	return ix
}

// Lookup returns the section stored for reference. Unknown references yield
// the blank types.Section so callers can render missing documentation as
// empty. A nil Index behaves as an empty one.
func (ix *Index) Lookup(reference string) types.Section {
	if ix == nil {
		return types.Section{}
	}
	return ix.sections[reference]
}

// Has reports whether reference is present
func (ix *Index) Has(reference string) bool {
	if ix == nil {
		return false
	}
	_, ok := ix.sections[reference]
	return ok
}

// Len returns the number of references in the index
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.sections)
}

// References returns all references in table-of-contents order
func (ix *Index) References() []string {
	if ix == nil {
		return nil
	}
	refs := make([]string, 0, len(ix.sections))
	for ref := range ix.sections {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		return types.CompareReferences(refs[i], refs[j]) < 0
	})
	return refs
}

// Sections returns all sections in table-of-contents order
func (ix *Index) Sections() []types.Section {
	refs := ix.References()
	sections := make([]types.Section, 0, len(refs))
	for _, ref := range refs {
		sections = append(sections, ix.sections[ref])
	}
	return sections
}

// put stores section under its reference and returns the section it
// replaced, if any
func (ix *Index) put(section types.Section) (types.Section, bool) {
	previous, replaced := ix.sections[section.Reference]
	ix.sections[section.Reference] = section
	return previous, replaced
}
