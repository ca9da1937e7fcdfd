package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSection_IsEmpty(t *testing.T) {
	assert.True(t, Section{}.IsEmpty())
	assert.False(t, Section{Reference: "1.1"}.IsEmpty())
}

func TestSection_Depth(t *testing.T) {
	tests := []struct {
		reference string
		want      int
	}{
		{"", 0},
		{"2", 1},
		{"2.1", 2},
		{"2.1.3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			assert.Equal(t, tt.want, Section{Reference: tt.reference}.Depth())
		})
	}
}

func TestSection_Validate(t *testing.T) {
	t.Run("valid section", func(t *testing.T) {
		s := &Section{
			Reference: "1.2",
			Modifiers: []Modifier{{Name: ":hover"}},
		}
		assert.NoError(t, s.Validate())
	})

	t.Run("blank reference", func(t *testing.T) {
		s := &Section{Reference: "  "}
		assert.ErrorIs(t, s.Validate(), ErrEmptyReference)
	})

	t.Run("unnamed modifier", func(t *testing.T) {
		s := &Section{Reference: "1", Modifiers: []Modifier{{Description: "orphan"}}}
		assert.ErrorIs(t, s.Validate(), ErrEmptyModifierName)
	})
}

func TestModifier_ClassName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{".stars-given", "stars-given"},
		{":hover", "pseudo-class-hover"},
		{".stars-given:hover", "stars-given pseudo-class-hover"},
		{".primary.large", "primary large"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Modifier{Name: tt.name}.ClassName())
		})
	}
}

func TestModifier_IsPseudoClass(t *testing.T) {
	assert.True(t, Modifier{Name: ":focus"}.IsPseudoClass())
	assert.False(t, Modifier{Name: ".focus"}.IsPseudoClass())
}

func TestSearchResult_Validate(t *testing.T) {
	section := &Section{Reference: "3"}

	tests := []struct {
		name    string
		result  SearchResult
		wantErr error
	}{
		{"valid", SearchResult{Rank: 1, RelevanceScore: 0.5, Section: section}, nil},
		{"zero rank", SearchResult{Rank: 0, RelevanceScore: 0.5, Section: section}, ErrInvalidRank},
		{"score above one", SearchResult{Rank: 1, RelevanceScore: 1.5, Section: section}, ErrInvalidRelevanceScore},
		{"negative score", SearchResult{Rank: 1, RelevanceScore: -0.1, Section: section}, ErrInvalidRelevanceScore},
		{"missing section", SearchResult{Rank: 1, RelevanceScore: 0.5}, ErrMissingSection},
		{"blank section", SearchResult{Rank: 1, RelevanceScore: 0.5, Section: &Section{}}, ErrEmptyReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
