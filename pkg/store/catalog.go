// Package store persists extraction results: a catalog of citation
// abbreviations per law, a fragment error log for manual review, and a
// SQLite database holding every run.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/lawabbrev/pkg/abbrev"
	"github.com/coolbeans/lawabbrev/pkg/driver"
)

// Format selects the encoding of catalog and error log files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or yaml)", s)
	}
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Catalog maps a law number to the citation abbreviations defined in it.
// It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string][]abbrev.CitationRecord
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string][]abbrev.CitationRecord)}
}

// Add appends the citation records of result under its law number. Results
// with no law number are filed under the empty key.
func (c *Catalog) Add(result *driver.Result) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	existing := c.entries[result.LawNumber]
	if existing == nil {
		existing = make([]abbrev.CitationRecord, 0, len(result.Citations))
	}
	c.entries[result.LawNumber] = append(existing, result.Citations...)
}

// Records returns the records of one law in document order.
func (c *Catalog) Records(lawNumber string) []abbrev.CitationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	records := c.entries[lawNumber]
	out := make([]abbrev.CitationRecord, len(records))
	copy(out, records)
	return out
}

// LawNumbers returns the catalogued law numbers in sorted order.
func (c *Catalog) LawNumbers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	numbers := make([]string, 0, len(c.entries))
	for number := range c.entries {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)
	return numbers
}

// Len returns the total number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, records := range c.entries {
		total += len(records)
	}
	return total
}

// Marshal encodes the catalog as a single object keyed by law number.
func (c *Catalog) Marshal(format Format) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Encode(c.entries, format)
}

// WriteFile writes the catalog to path, creating parent directories.
func (c *Catalog) WriteFile(path string, format Format) error {
	data, err := c.Marshal(format)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return writeFile(path, data)
}

// LoadCatalog reads a catalog written by WriteFile. The format follows the
// file extension.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	catalog := NewCatalog()
	switch FormatForPath(path) {
	case FormatYAML:
		err = yaml.Unmarshal(data, &catalog.entries)
	default:
		err = json.Unmarshal(data, &catalog.entries)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if catalog.entries == nil {
		catalog.entries = make(map[string][]abbrev.CitationRecord)
	}
	return catalog, nil
}

// Encode marshals value as indented JSON or as YAML.
func Encode(value any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(value)
	case FormatJSON, "":
		return json.MarshalIndent(value, "", "  ")
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
