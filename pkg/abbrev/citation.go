package abbrev

import (
	"regexp"

	"github.com/coolbeans/lawabbrev/pkg/position"
)

const (
	eraPattern = `(?:明治|大正|昭和|平成|令和)`
	// 元 covers the first year of an era (令和元年).
	yearPattern   = `[元〇一二三四五六七八九十]+年`
	numberPattern = `[〇一二三四五六七八九十百千]+`

	// citationNumberPattern matches 平成二十八年法律第十三号. The promulgation kind
	// between 年 and 第 may not contain brackets, punctuation or hiragana so an
	// earlier citation cannot run on into the surrounding sentence.
	citationNumberPattern = eraPattern + yearPattern + `[^（）「」、。ぁ-ん]+第` + numberPattern + `号`

	// nestedParenPattern is one balanced parenthetical with no further nesting,
	// such as （第三項を除く。）.
	nestedParenPattern = `（[^（）「」]*）`

	// citationFillerPattern sits between the citation number and the definition.
	// Apart from balanced inner parentheticals it may not open or close one, so
	// an earlier citation is never paired with a later citation's definition.
	citationFillerPattern = `(?:[^「」（）]|` + nestedParenPattern + `)*?`

	// definitionTailPattern matches 以下<scope>において「name」という。 where the
	// scope is optional and the name ends in 法 or 令. The scope may carry an
	// inner parenthetical.
	definitionTailPattern = `(?:以下)?(?:(?P<note>(?:[^「」（）。]|` + nestedParenPattern + `)+)において)?、?「(?P<name>[^「」]*[法令])」という。`
)

// CitationExtractor finds abbreviations defined inside a law citation
// parenthetical.
type CitationExtractor struct {
	pattern   *regexp.Regexp
	numGroup  int
	nameGroup int
	noteGroup int
}

// NewCitationExtractor creates a new CitationExtractor.
func NewCitationExtractor() *CitationExtractor {
	// Matches （平成二十八年法律第十三号。以下イにおいて「平成二十八年地方税法等改正法」という。
	pattern := regexp.MustCompile(`（(?P<num>` + citationNumberPattern + `)` + citationFillerPattern + definitionTailPattern)
	return &CitationExtractor{
		pattern:   pattern,
		numGroup:  pattern.SubexpIndex("num"),
		nameGroup: pattern.SubexpIndex("name"),
		noteGroup: pattern.SubexpIndex("note"),
	}
}

// Extract returns one record per definition in text, in textual order. Every
// record is stamped with lawNum and a copy of pos.
func (e *CitationExtractor) Extract(lawNum string, pos position.Position, text string) []CitationRecord {
	records := make([]CitationRecord, 0)

	for _, m := range e.pattern.FindAllStringSubmatch(text, -1) {
		num, name := m[e.numGroup], m[e.nameGroup]
		if num == "" || name == "" {
			continue
		}
		records = append(records, CitationRecord{
			CitationNumber: num,
			Name:           name,
			ScopeNote:      m[e.noteGroup],
			Position:       pos,
			LawNumber:      lawNum,
		})
	}

	return records
}
