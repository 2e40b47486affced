// Package position tracks where a text fragment sits in a statute's numbering
// hierarchy: article, paragraph, item, sub-item, and whether it belongs to a
// supplementary-provision block.
//
// Position is a value type. Every mutator returns a new Position and leaves
// the receiver untouched, so a failed update can never leave a half-applied
// cursor behind.
package position

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MalformedNumberError reports a numbering component that is not a
// non-negative integer.
type MalformedNumberError struct {
	Raw       string
	Component string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q: component %q is not a non-negative integer", e.Raw, e.Component)
}

// SubItem is a sub-item number together with its nesting depth
// (1 for イロハ, 2 for (1)(2), and so on).
type SubItem struct {
	Depth  int   `json:"depth" yaml:"depth"`
	Number []int `json:"number" yaml:"number"`
}

// Position is the article/paragraph/item/sub-item coordinate of a fragment.
// The zero value is the position at the start of a document.
type Position struct {
	article    []int
	paragraph  []int
	item       []int
	subItem    *SubItem
	supplTitle *string
}

// New returns the position at the start of a document.
func New() Position {
	return Position{}
}

// ParseNumber splits a raw number such as "3_2" into [3 2].
func ParseNumber(raw string) ([]int, error) {
	parts := strings.Split(raw, "_")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, &MalformedNumberError{Raw: raw, Component: part}
		}
		numbers = append(numbers, int(n))
	}
	return numbers, nil
}

// WithArticle moves to a new article. Paragraph, item and sub-item are cleared.
func (p Position) WithArticle(raw string) (Position, error) {
	numbers, err := ParseNumber(raw)
	if err != nil {
		return p, err
	}
	return Position{
		article:    numbers,
		supplTitle: p.supplTitle,
	}, nil
}

// WithParagraph moves to a new paragraph of the current article. Item and
// sub-item are cleared.
func (p Position) WithParagraph(raw string) (Position, error) {
	numbers, err := ParseNumber(raw)
	if err != nil {
		return p, err
	}
	return Position{
		article:    p.article,
		paragraph:  numbers,
		supplTitle: p.supplTitle,
	}, nil
}

// WithItem moves to a new item of the current paragraph. Sub-item is cleared.
func (p Position) WithItem(raw string) (Position, error) {
	numbers, err := ParseNumber(raw)
	if err != nil {
		return p, err
	}
	return Position{
		article:    p.article,
		paragraph:  p.paragraph,
		item:       numbers,
		supplTitle: p.supplTitle,
	}, nil
}

// WithSubItem sets the sub-item at the given depth. The supplementary
// provision title, if any, is kept.
func (p Position) WithSubItem(depth int, raw string) (Position, error) {
	if depth < 1 {
		return p, &MalformedNumberError{Raw: raw, Component: strconv.Itoa(depth)}
	}
	numbers, err := ParseNumber(raw)
	if err != nil {
		return p, err
	}
	next := p
	next.subItem = &SubItem{Depth: depth, Number: numbers}
	return next, nil
}

// WithSupplProvisionTitle enters a supplementary-provision block. Numbering
// restarts, so everything but the title is reset.
func (p Position) WithSupplProvisionTitle(title string) Position {
	return Position{supplTitle: &title}
}

// Article returns a copy of the article number.
func (p Position) Article() []int { return slices.Clone(p.article) }

// Paragraph returns a copy of the paragraph number; empty before the first
// paragraph marker.
func (p Position) Paragraph() []int { return slices.Clone(p.paragraph) }

// Item returns a copy of the item number.
func (p Position) Item() []int { return slices.Clone(p.item) }

// SubItem returns the sub-item, if one is set.
func (p Position) SubItem() (SubItem, bool) {
	if p.subItem == nil {
		return SubItem{}, false
	}
	return SubItem{Depth: p.subItem.Depth, Number: slices.Clone(p.subItem.Number)}, true
}

// SupplProvisionTitle returns the title of the enclosing supplementary
// provision block, if any.
func (p Position) SupplProvisionTitle() (string, bool) {
	if p.supplTitle == nil {
		return "", false
	}
	return *p.supplTitle, true
}

// InSupplProvision reports whether the position is inside a supplementary
// provision block.
func (p Position) InSupplProvision() bool {
	return p.supplTitle != nil
}

// IsZero reports whether nothing has been set yet.
func (p Position) IsZero() bool {
	return len(p.article) == 0 && len(p.paragraph) == 0 && len(p.item) == 0 &&
		p.subItem == nil && p.supplTitle == nil
}

// Equal reports whether two positions denote the same coordinate.
func (p Position) Equal(other Position) bool {
	if !slices.Equal(p.article, other.article) ||
		!slices.Equal(p.paragraph, other.paragraph) ||
		!slices.Equal(p.item, other.item) {
		return false
	}
	if (p.subItem == nil) != (other.subItem == nil) {
		return false
	}
	if p.subItem != nil &&
		(p.subItem.Depth != other.subItem.Depth || !slices.Equal(p.subItem.Number, other.subItem.Number)) {
		return false
	}
	if (p.supplTitle == nil) != (other.supplTitle == nil) {
		return false
	}
	return p.supplTitle == nil || *p.supplTitle == *other.supplTitle
}

// String renders the position for logs, e.g. "suppl(附則)/3_2/1/2/sub1:1".
func (p Position) String() string {
	var builder strings.Builder
	if p.supplTitle != nil {
		builder.WriteString("suppl(" + *p.supplTitle + ")/")
	}
	builder.WriteString(joinNumber(p.article))
	if len(p.paragraph) > 0 {
		builder.WriteString("/" + joinNumber(p.paragraph))
	}
	if len(p.item) > 0 {
		builder.WriteString("/" + joinNumber(p.item))
	}
	if p.subItem != nil {
		builder.WriteString(fmt.Sprintf("/sub%d:%s", p.subItem.Depth, joinNumber(p.subItem.Number)))
	}
	return builder.String()
}

func joinNumber(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "_")
}
