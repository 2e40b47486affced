package abbrev

// Span is a half-open byte range [Start, End) into the UTF-8 text an
// abbreviation was found in. It does not keep the text itself.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// SpanOf returns the span of submatch group in a row produced by
// FindAllStringSubmatchIndex. ok is false when the group did not participate.
func SpanOf(loc []int, group int) (Span, bool) {
	if 2*group+1 >= len(loc) || loc[2*group] < 0 {
		return Span{}, false
	}
	return NewSpan(loc[2*group], loc[2*group+1]), true
}

// Len returns the length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Text slices src. It returns "" when src is shorter than the span.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End < s.Start || s.End > len(src) {
		return ""
	}
	return src[s.Start:s.End]
}
