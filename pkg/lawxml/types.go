// Package lawxml turns e-Gov standard law XML into an ordered stream of
// position events and text/table fragments.
package lawxml

import (
	"fmt"
	"io"

	"github.com/coolbeans/lawabbrev/pkg/position"
)

// EventKind identifies which level of the numbering hierarchy an event moves.
type EventKind string

const (
	EventArticle        EventKind = "article"
	EventParagraph      EventKind = "paragraph"
	EventItem           EventKind = "item"
	EventSubItem        EventKind = "sub_item"
	EventSupplProvision EventKind = "suppl_provision"
)

// Event is a numbering marker that precedes a fragment in document order.
type Event struct {
	Kind EventKind `json:"kind"`
	// Num is the raw Num attribute, e.g. "3_2".
	Num string `json:"num,omitempty"`
	// Depth is the sub-item depth (Subitem1 is 1).
	Depth int `json:"depth,omitempty"`
	// Title identifies a supplementary provision block.
	Title string `json:"title,omitempty"`
}

// Apply returns pos moved by the event. On error pos is returned unchanged.
func (e Event) Apply(pos position.Position) (position.Position, error) {
	switch e.Kind {
	case EventArticle:
		return pos.WithArticle(e.Num)
	case EventParagraph:
		return pos.WithParagraph(e.Num)
	case EventItem:
		return pos.WithItem(e.Num)
	case EventSubItem:
		return pos.WithSubItem(e.Depth, e.Num)
	case EventSupplProvision:
		return pos.WithSupplProvisionTitle(e.Title), nil
	default:
		return pos, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// FragmentKind distinguishes flowing text from tables.
type FragmentKind string

const (
	KindText  FragmentKind = "text"
	KindTable FragmentKind = "table"
)

// Fragment is one unit of content together with the events that preceded it.
type Fragment struct {
	Events []Event      `json:"events,omitempty"`
	Kind   FragmentKind `json:"kind"`
	Text   string       `json:"text"`
}

// Text builds a text fragment.
func Text(text string, events ...Event) Fragment {
	return Fragment{Events: events, Kind: KindText, Text: text}
}

// Table builds a table fragment.
func Table(text string, events ...Event) Fragment {
	return Fragment{Events: events, Kind: KindTable, Text: text}
}

// Stream yields fragments in document order and returns io.EOF at the end.
type Stream interface {
	Next() (Fragment, error)
}

// SliceStream serves fragments from memory.
type SliceStream struct {
	fragments []Fragment
	next      int
}

// NewSliceStream creates a stream over fragments.
func NewSliceStream(fragments ...Fragment) *SliceStream {
	return &SliceStream{fragments: fragments}
}

// Next implements Stream.
func (s *SliceStream) Next() (Fragment, error) {
	if s.next >= len(s.fragments) {
		return Fragment{}, io.EOF
	}
	fragment := s.fragments[s.next]
	s.next++
	return fragment, nil
}

// Collect drains a stream.
func Collect(stream Stream) ([]Fragment, error) {
	fragments := make([]Fragment, 0)
	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			return fragments, nil
		}
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, fragment)
	}
}
