package scope

import (
	"regexp"
	"strings"
)

const supplPrefix = "附則"

// Parser turns qualifier text into scope notes. It holds only compiled
// patterns and is safe for concurrent use.
type Parser struct {
	delimiterPattern *regexp.Regexp
	rangePattern     *regexp.Regexp
	remarkPattern    *regexp.Regexp
	relativePattern  *regexp.Regexp
	locatorPattern   *regexp.Regexp
}

// NewParser compiles the qualifier grammar.
func NewParser() *Parser {
	return &Parser{
		// 、 / 及び / 並びに separate independent notes
		delimiterPattern: regexp.MustCompile(`、|及び|並びに`),
		// 第五条から第七条まで
		rangePattern: regexp.MustCompile(`^(.+?)から(.+)まで$`),
		// この条（第三項を除く。）
		remarkPattern: regexp.MustCompile(`^([^（）]+)（([^（）]*)）$`),
		// この条, 本項, 次号, この記載要領
		relativePattern: regexp.MustCompile(`^(この|本|次)(記載要領|条|項|号|節)`),
		// 第七条の二, 第三項第一号, イ
		locatorPattern: regexp.MustCompile(`^[次の第条項号節〇一二三四五六七八九十百千ア-ン]+$`),
	}
}

var defaultParser = NewParser()

// Parse parses text with the package's shared Parser.
func Parse(text string) ([]Note, error) {
	return defaultParser.Parse(text)
}

// Parse splits text into notes in reading order. The first segment that
// cannot be classified fails the whole qualifier with *UnrecognizedScopeError.
//
// A relative qualifier followed by a locator, as in この条第二項, yields two
// notes. A trailing parenthetical is kept as the Remark of the segment's
// last note.
func (p *Parser) Parse(text string) ([]Note, error) {
	segments := p.split(text)
	notes := make([]Note, 0, len(segments))

	for _, segment := range segments {
		body, remark := segment, ""
		if m := p.remarkPattern.FindStringSubmatch(segment); m != nil {
			body, remark = m[1], m[2]
		}

		parsed, err := p.parseSegment(text, segment, body)
		if err != nil {
			return nil, err
		}
		if remark != "" {
			last := len(parsed) - 1
			parsed[last] = parsed[last].WithRemark(remark)
		}
		notes = append(notes, parsed...)
	}

	return notes, nil
}

// split cuts text at delimiters that sit outside parentheses.
func (p *Parser) split(text string) []string {
	var segments []string
	start := 0
	for _, loc := range p.delimiterPattern.FindAllStringIndex(text, -1) {
		if parenDepth(text[:loc[0]]) > 0 {
			continue
		}
		segments = append(segments, text[start:loc[0]])
		start = loc[1]
	}
	return append(segments, text[start:])
}

func parenDepth(s string) int {
	return strings.Count(s, "（") - strings.Count(s, "）")
}

func (p *Parser) parseSegment(text, segment, body string) ([]Note, error) {
	if m := p.rangePattern.FindStringSubmatch(body); m != nil {
		start, err := p.parseReference(text, segment, m[1])
		if err != nil {
			return nil, err
		}
		end, err := p.parseReference(text, segment, m[2])
		if err != nil {
			return nil, err
		}
		return []Note{Range(start, end)}, nil
	}

	if ref, rest, ok := p.relative(body); ok {
		switch {
		case rest == "":
			return []Note{Single(ref)}, nil
		case p.locatorPattern.MatchString(rest):
			return []Note{Single(ref), Single(PlainLink(rest))}, nil
		default:
			return nil, &UnrecognizedScopeError{Text: text, Segment: segment}
		}
	}

	ref, err := p.parseReference(text, segment, body)
	if err != nil {
		return nil, err
	}
	return []Note{Single(ref)}, nil
}

// ParseReference classifies a single segment without list or range handling.
func (p *Parser) ParseReference(segment string) (Reference, error) {
	return p.parseReference(segment, segment, segment)
}

// relative matches a this/next prefix and returns whatever follows it.
func (p *Parser) relative(s string) (Reference, string, bool) {
	m := p.relativePattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, "", false
	}
	level := levelKeywords[m[2]]
	rest := s[len(m[0]):]
	if m[1] == "次" {
		return Next(level), rest, true
	}
	return This(level), rest, true
}

func (p *Parser) parseReference(text, segment, s string) (Reference, error) {
	if ref, rest, ok := p.relative(s); ok {
		if rest == "" {
			return ref, nil
		}
		return Reference{}, &UnrecognizedScopeError{Text: text, Segment: segment}
	}

	if rest, ok := strings.CutPrefix(s, supplPrefix); ok {
		rest = strings.TrimPrefix(rest, "の")
		if rest == "" || p.locatorPattern.MatchString(rest) {
			return SupplementaryLink(rest), nil
		}
		return Reference{}, &UnrecognizedScopeError{Text: text, Segment: segment}
	}

	if p.locatorPattern.MatchString(s) {
		return PlainLink(s), nil
	}

	return Reference{}, &UnrecognizedScopeError{Text: text, Segment: segment}
}
