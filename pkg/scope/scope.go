// Package scope parses the qualifier that limits where a defined abbreviation
// applies, such as "この条", "次項", "附則第三条" or "第五条から第七条まで".
package scope

import "fmt"

// Level is the structural unit a this/next qualifier points at.
type Level string

const (
	LevelDraftingNote Level = "drafting_note" // 記載要領
	LevelArticle      Level = "article"       // 条
	LevelParagraph    Level = "paragraph"     // 項
	LevelItem         Level = "item"          // 号
	LevelSubItem      Level = "sub_item"      // 節
)

var levelKeywords = map[string]Level{
	"記載要領": LevelDraftingNote,
	"条":    LevelArticle,
	"項":    LevelParagraph,
	"号":    LevelItem,
	"節":    LevelSubItem,
}

// ReferenceKind distinguishes the shapes a single qualifier can take.
type ReferenceKind string

const (
	KindThis              ReferenceKind = "this"
	KindNext              ReferenceKind = "next"
	KindSupplementaryLink ReferenceKind = "supplementary_link"
	KindLink              ReferenceKind = "link"
)

// Reference is one parsed qualifier. Level is set for KindThis and KindNext;
// Locator holds the raw locator text for the two link kinds.
type Reference struct {
	Kind    ReferenceKind `json:"kind" yaml:"kind"`
	Level   Level         `json:"level,omitempty" yaml:"level,omitempty"`
	Locator string        `json:"locator,omitempty" yaml:"locator,omitempty"`
}

// This refers to the current unit, e.g. この条.
func This(level Level) Reference { return Reference{Kind: KindThis, Level: level} }

// Next refers to the following unit, e.g. 次項.
func Next(level Level) Reference { return Reference{Kind: KindNext, Level: level} }

// SupplementaryLink refers to a locator inside the supplementary provisions.
// An empty locator means the supplementary provisions as a whole.
func SupplementaryLink(locator string) Reference {
	return Reference{Kind: KindSupplementaryLink, Locator: locator}
}

// PlainLink refers to an ordinary locator such as 第七条の二.
func PlainLink(locator string) Reference { return Reference{Kind: KindLink, Locator: locator} }

func (r Reference) String() string {
	switch r.Kind {
	case KindThis, KindNext:
		return fmt.Sprintf("%s(%s)", r.Kind, r.Level)
	default:
		return fmt.Sprintf("%s(%q)", r.Kind, r.Locator)
	}
}

// NoteKind distinguishes a single reference from an inclusive range.
type NoteKind string

const (
	NoteSingle NoteKind = "single"
	NoteRange  NoteKind = "range"
)

// Note is one scope note. For NoteSingle only Start is set; for NoteRange the
// note covers Start through End inclusive. Remark keeps a trailing
// parenthetical such as 第三項を除く。 verbatim, without its brackets.
type Note struct {
	Kind   NoteKind   `json:"kind" yaml:"kind"`
	Start  Reference  `json:"start" yaml:"start"`
	End    *Reference `json:"end,omitempty" yaml:"end,omitempty"`
	Remark string     `json:"remark,omitempty" yaml:"remark,omitempty"`
}

// Single wraps one reference.
func Single(ref Reference) Note { return Note{Kind: NoteSingle, Start: ref} }

// Range covers start through end.
func Range(start, end Reference) Note { return Note{Kind: NoteRange, Start: start, End: &end} }

// WithRemark returns a copy of n carrying remark.
func (n Note) WithRemark(remark string) Note {
	n.Remark = remark
	return n
}

// Equal reports whether two notes are the same.
func (n Note) Equal(other Note) bool {
	if n.Kind != other.Kind || n.Start != other.Start || n.Remark != other.Remark {
		return false
	}
	if (n.End == nil) != (other.End == nil) {
		return false
	}
	return n.End == nil || *n.End == *other.End
}

func (n Note) String() string {
	var s string
	if n.Kind == NoteRange && n.End != nil {
		s = fmt.Sprintf("range(%s, %s)", n.Start, *n.End)
	} else {
		s = fmt.Sprintf("single(%s)", n.Start)
	}
	if n.Remark != "" {
		s += fmt.Sprintf("（%s）", n.Remark)
	}
	return s
}

// UnrecognizedScopeError reports a qualifier segment that matches none of the
// known shapes.
type UnrecognizedScopeError struct {
	Text    string
	Segment string
}

func (e *UnrecognizedScopeError) Error() string {
	return fmt.Sprintf("unrecognized scope segment %q in %q", e.Segment, e.Text)
}
