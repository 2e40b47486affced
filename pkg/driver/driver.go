// Package driver walks the fragments of a statute in document order, keeps
// the structural position current, and feeds text fragments to the
// abbreviation extractors.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/coolbeans/lawabbrev/pkg/abbrev"
	"github.com/coolbeans/lawabbrev/pkg/lawxml"
	"github.com/coolbeans/lawabbrev/pkg/logging"
	"github.com/coolbeans/lawabbrev/pkg/position"
	"github.com/coolbeans/lawabbrev/pkg/scope"
)

// Mode selects which extractors run.
type Mode string

const (
	ModeCitation Mode = "citation"
	ModeGeneric  Mode = "generic"
	ModeBoth     Mode = "both"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCitation, ModeGeneric, ModeBoth:
		return Mode(s), nil
	case "":
		return ModeCitation, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want citation, generic or both)", s)
	}
}

func (m Mode) citation() bool { return m == ModeCitation || m == ModeBoth }
func (m Mode) generic() bool  { return m == ModeGeneric || m == ModeBoth }

// Stage names where in the pipeline a fragment error happened.
type Stage string

const (
	StagePosition Stage = "position"
	StageScope    Stage = "scope"
)

// FragmentError records a fragment that could not be fully processed, for
// manual review. Processing continues with the next fragment.
type FragmentError struct {
	LawNumber string            `json:"law_number" yaml:"law_number"`
	Position  position.Position `json:"position" yaml:"position"`
	Stage     Stage             `json:"stage" yaml:"stage"`
	Text      string            `json:"text,omitempty" yaml:"text,omitempty"`
	Message   string            `json:"message" yaml:"message"`
}

// Result is everything extracted from one document.
type Result struct {
	LawNumber string                  `json:"law_number"`
	Citations []abbrev.CitationRecord `json:"citations"`
	Generic   []abbrev.GenericRecord  `json:"generic,omitempty"`
	Errors    []FragmentError         `json:"errors,omitempty"`
	Fragments int                     `json:"fragments"`
	Tables    int                     `json:"tables"`
}

// Options configures a Driver.
type Options struct {
	Mode Mode
	// ParseCitationScopes validates the raw qualifier of citation records
	// and logs the ones that do not parse.
	ParseCitationScopes bool
	Logger              *slog.Logger
}

// Driver runs the extractors over a fragment stream. A Driver keeps no
// per-document state and may be shared by concurrent traversals.
type Driver struct {
	mode                Mode
	parseCitationScopes bool
	citation            *abbrev.CitationExtractor
	generic             *abbrev.GenericExtractor
	parser              *scope.Parser
	logger              *slog.Logger
}

// New creates a Driver.
func New(opts Options) *Driver {
	mode := opts.Mode
	if mode == "" {
		mode = ModeCitation
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	parser := scope.NewParser()
	return &Driver{
		mode:                mode,
		parseCitationScopes: opts.ParseCitationScopes,
		citation:            abbrev.NewCitationExtractor(),
		generic:             abbrev.NewGenericExtractor(parser),
		parser:              parser,
		logger:              logger,
	}
}

// lawNumberer is implemented by streams that learn the law number from the
// document itself, such as *lawxml.Decoder.
type lawNumberer interface {
	LawNumber() string
}

// Traverse processes stream in order with a fresh position. When lawNum is
// empty and the stream can report one, the stream's law number is used.
// Context cancellation is honoured between fragments only. The partial
// result is returned together with any stream or context error.
func (d *Driver) Traverse(ctx context.Context, lawNum string, stream lawxml.Stream) (*Result, error) {
	result := &Result{
		LawNumber: lawNum,
		Citations: make([]abbrev.CitationRecord, 0),
		Generic:   make([]abbrev.GenericRecord, 0),
		Errors:    make([]FragmentError, 0),
	}
	pos := position.New()

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fragment, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("failed to read fragment %d: %w", result.Fragments+1, err)
		}
		result.Fragments++

		if result.LawNumber == "" {
			if numberer, ok := stream.(lawNumberer); ok {
				result.LawNumber = numberer.LawNumber()
			}
		}

		for _, event := range fragment.Events {
			next, err := event.Apply(pos)
			if err != nil {
				d.recordError(result, pos, StagePosition, "", err)
				continue
			}
			pos = next
		}

		// Abbreviations are never defined inside tables.
		if fragment.Kind == lawxml.KindTable {
			result.Tables++
			continue
		}

		d.processText(result, pos, fragment.Text)
	}
}

func (d *Driver) processText(result *Result, pos position.Position, text string) {
	if d.mode.citation() {
		records := d.citation.Extract(result.LawNumber, pos, text)
		for _, record := range records {
			if !d.parseCitationScopes || !record.HasScopeNote() {
				continue
			}
			if _, err := record.ScopeNotes(d.parser); err != nil {
				d.recordError(result, pos, StageScope, text, err)
			}
		}
		result.Citations = append(result.Citations, records...)
	}

	if d.mode.generic() {
		records, err := d.generic.Extract(pos.Label(), text)
		if err != nil {
			d.recordError(result, pos, StageScope, text, err)
		}
		result.Generic = append(result.Generic, records...)
	}
}

func (d *Driver) recordError(result *Result, pos position.Position, stage Stage, text string, err error) {
	d.logger.Warn("fragment error",
		"law_number", result.LawNumber,
		"position", pos.String(),
		"stage", string(stage),
		"error", err)
	result.Errors = append(result.Errors, FragmentError{
		LawNumber: result.LawNumber,
		Position:  pos,
		Stage:     stage,
		Text:      text,
		Message:   err.Error(),
	})
}
