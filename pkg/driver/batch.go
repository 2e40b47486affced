package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/lawabbrev/pkg/lawxml"
	"github.com/coolbeans/lawabbrev/pkg/logging"
)

// DocumentStatus is the outcome of one document in a batch.
type DocumentStatus string

const (
	StatusOK     DocumentStatus = "ok"
	StatusFailed DocumentStatus = "failed"
)

// DocumentReport summarises one document of a batch.
type DocumentReport struct {
	LawNumber      string         `json:"law_number"`
	Path           string         `json:"path"`
	Status         DocumentStatus `json:"status"`
	Citations      int            `json:"citations"`
	Generic        int            `json:"generic"`
	FragmentErrors int            `json:"fragment_errors"`
	Error          string         `json:"error,omitempty"`
}

// BatchReport summarises a batch run. Results holds the per-document output
// in index order; failed documents keep whatever was extracted before the
// failure.
type BatchReport struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Attempted  int              `json:"attempted"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Documents  []DocumentReport `json:"documents"`
	Results    []*Result        `json:"-"`
}

// BatchConfig configures a Batch.
type BatchConfig struct {
	// WorkDir is joined onto relative index paths.
	WorkDir string
	// Workers bounds how many documents are traversed at once.
	Workers int
	Logger  *slog.Logger
}

// Batch traverses many documents concurrently. Each document gets its own
// position, so documents never share mutable state.
type Batch struct {
	driver *Driver
	config BatchConfig
	logger *slog.Logger
}

// NewBatch creates a Batch around driver.
func NewBatch(driver *Driver, config BatchConfig) *Batch {
	if config.Workers < 1 {
		config.Workers = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Batch{driver: driver, config: config, logger: logger}
}

// Run processes every entry. A document that cannot be read or parsed is
// marked failed and the batch continues; only cancellation of ctx stops the
// run early.
func (b *Batch) Run(ctx context.Context, entries []IndexEntry) (*BatchReport, error) {
	report := &BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Documents: make([]DocumentReport, len(entries)),
		Results:   make([]*Result, len(entries)),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.config.Workers)

	for i, entry := range entries {
		group.Go(func() error {
			result, err := b.runDocument(groupCtx, entry)
			if err != nil && groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			report.Results[i] = result
			report.Documents[i] = documentReport(entry, resolvePath(b.config.WorkDir, entry), result, err)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s cancelled: %w", report.RunID, err)
	}

	report.FinishedAt = time.Now().UTC()
	for _, document := range report.Documents {
		report.Attempted++
		if document.Status == StatusOK {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	b.logger.Info("batch finished",
		"run_id", report.RunID,
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed)

	return report, nil
}

func (b *Batch) runDocument(ctx context.Context, entry IndexEntry) (*Result, error) {
	path := resolvePath(b.config.WorkDir, entry)
	logger := b.logger.With("path", path)

	file, err := lawxml.Open(path)
	if err != nil {
		logger.Error("failed to open law file", "error", err)
		return &Result{LawNumber: entry.LawNumber}, err
	}
	defer file.Close()

	result, err := b.driver.Traverse(ctx, entry.LawNumber, lawxml.NewDecoder(file))
	if err != nil {
		logger.Error("failed to traverse law file", "error", err)
		return result, err
	}

	logger.Debug("document processed",
		"law_number", result.LawNumber,
		"citations", len(result.Citations),
		"generic", len(result.Generic),
		"fragment_errors", len(result.Errors))
	return result, nil
}

func documentReport(entry IndexEntry, path string, result *Result, err error) DocumentReport {
	document := DocumentReport{
		LawNumber: entry.LawNumber,
		Path:      path,
		Status:    StatusOK,
	}
	if result != nil {
		if result.LawNumber != "" {
			document.LawNumber = result.LawNumber
		}
		document.Citations = len(result.Citations)
		document.Generic = len(result.Generic)
		document.FragmentErrors = len(result.Errors)
	}
	if err != nil {
		document.Status = StatusFailed
		document.Error = err.Error()
	}
	return document
}
