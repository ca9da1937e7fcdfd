package types

import "strings"

// Section represents one style guide entry parsed from a documentation comment
type Section struct {
	// Identification
	Reference string // Style guide reference (e.g., "2.1.1")

	// Content
	Title       string
	Description string
	Modifiers   []Modifier
	Raw         string // Comment block text the section was parsed from

	// Location
	Filename string // Base name of the source file
	Path     string // Source directory relative to the working directory
}

// IsEmpty reports whether s is the blank section returned for unknown references
func (s Section) IsEmpty() bool {
	return s.Reference == ""
}

// Depth returns the number of levels in the reference ("2.1.1" has depth 3)
func (s Section) Depth() int {
	if s.Reference == "" {
		return 0
	}
	return len(strings.Split(s.Reference, "."))
}

// Validate checks if the section can be stored in an index
func (s *Section) Validate() error {
	if strings.TrimSpace(s.Reference) == "" {
		return ErrEmptyReference
	}

	for i := range s.Modifiers {
		if err := s.Modifiers[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Modifier is a state or variant class documented by a section (":hover", ".primary")
type Modifier struct {
	Name        string
	Description string
}

// ClassName converts the modifier name into the class attribute used when
// rendering examples: ".primary:hover" becomes "primary pseudo-class-hover".
func (m Modifier) ClassName() string {
	name := strings.ReplaceAll(m.Name, ".", " ")
	name = strings.ReplaceAll(name, ":", " pseudo-class-")
	return strings.Join(strings.Fields(name), " ")
}

// IsPseudoClass reports whether the modifier targets a pseudo-class
func (m Modifier) IsPseudoClass() bool {
	return strings.HasPrefix(m.Name, ":")
}

// Validate checks if the modifier is well formed
func (m *Modifier) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyModifierName
	}
	return nil
}
