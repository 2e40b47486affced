// Package abbrev extracts abbreviation definitions of the form
// 「（平成十五年法律第五十七号。以下「個人情報保護法」という。）」 from statute text.
//
// Two grammars are supported. CitationExtractor requires an explicit law
// citation number inside the parenthetical and keeps the scope qualifier raw.
// GenericExtractor accepts any clause ending in 。 and parses the qualifier
// with package scope.
package abbrev

import (
	"github.com/coolbeans/lawabbrev/pkg/position"
	"github.com/coolbeans/lawabbrev/pkg/scope"
)

// CitationRecord is an abbreviation defined for a cited law.
type CitationRecord struct {
	// CitationNumber is the promulgation number, e.g. 平成二十八年法律第十三号.
	CitationNumber string `json:"citation_number" yaml:"citation_number"`
	// Name is the abbreviation, e.g. 平成二十八年地方税法等改正法.
	Name string `json:"name" yaml:"name"`
	// ScopeNote is the raw qualifier before において; empty when absent.
	ScopeNote string            `json:"scope_note,omitempty" yaml:"scope_note,omitempty"`
	Position  position.Position `json:"position" yaml:"position"`
	LawNumber string            `json:"law_number" yaml:"law_number"`
}

// HasScopeNote reports whether the definition carried a qualifier.
func (r CitationRecord) HasScopeNote() bool { return r.ScopeNote != "" }

// ScopeNotes parses the raw qualifier. It returns nil for records without one.
func (r CitationRecord) ScopeNotes(parser *scope.Parser) ([]scope.Note, error) {
	if r.ScopeNote == "" {
		return nil, nil
	}
	return parser.Parse(r.ScopeNote)
}

// GenericRecord is an abbreviation found by the looser grammar.
type GenericRecord struct {
	Name       string       `json:"name" yaml:"name"`
	ScopeNotes []scope.Note `json:"scope_notes" yaml:"scope_notes"`
	// Span locates Name in the fragment text.
	Span Span `json:"span" yaml:"span"`
	// ArticleLabel is the enclosing position label, e.g. 第三条第二項; empty when unknown.
	ArticleLabel string `json:"article_label,omitempty" yaml:"article_label,omitempty"`
}
