package abbrev

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/coolbeans/lawabbrev/pkg/scope"
)

// GenericExtractor finds abbreviations introduced by any clause ending in 。,
// not only law citations. It is a looser pass than CitationExtractor and may
// report definitions of things other than laws.
type GenericExtractor struct {
	pattern   *regexp.Regexp
	parser    *scope.Parser
	nameGroup int
	noteGroup int
}

// NewGenericExtractor creates a GenericExtractor that parses qualifiers with
// parser. A nil parser selects a fresh scope.NewParser().
func NewGenericExtractor(parser *scope.Parser) *GenericExtractor {
	if parser == nil {
		parser = scope.NewParser()
	}
	// Matches 平成十五年法律第五十七号。以下この条において「個人情報保護法」という。
	pattern := regexp.MustCompile(`(?P<clause>[^（）、。ぁ-ん]+)。` + definitionTailPattern)
	return &GenericExtractor{
		pattern:   pattern,
		parser:    parser,
		nameGroup: pattern.SubexpIndex("name"),
		noteGroup: pattern.SubexpIndex("note"),
	}
}

// Extract returns the definitions in text. A match whose qualifier cannot be
// parsed is left out and its *scope.UnrecognizedScopeError is returned, joined
// with any others, next to the records that did parse.
func (e *GenericExtractor) Extract(articleLabel string, text string) ([]GenericRecord, error) {
	records := make([]GenericRecord, 0)
	var errs []error

	for _, loc := range e.pattern.FindAllStringSubmatchIndex(text, -1) {
		nameSpan, ok := SpanOf(loc, e.nameGroup)
		if !ok {
			continue
		}

		notes := make([]scope.Note, 0)
		if noteSpan, ok := SpanOf(loc, e.noteGroup); ok {
			parsed, err := e.parser.Parse(noteSpan.Text(text))
			if err != nil {
				errs = append(errs, fmt.Errorf("definition of %q: %w", nameSpan.Text(text), err))
				continue
			}
			notes = parsed
		}

		records = append(records, GenericRecord{
			Name:         nameSpan.Text(text),
			ScopeNotes:   notes,
			Span:         nameSpan,
			ArticleLabel: articleLabel,
		})
	}

	return records, errors.Join(errs...)
}
