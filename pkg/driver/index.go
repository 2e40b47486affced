package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IndexEntry names one law file to process.
type IndexEntry struct {
	// LawNumber stamps every record; when empty the number in the XML is used.
	LawNumber string `json:"law_number" yaml:"law_number"`
	// Path is relative to the work directory unless absolute.
	Path  string `json:"path" yaml:"path"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// LoadIndex reads an index file. Files ending in .yaml or .yml are YAML,
// everything else JSON.
func LoadIndex(indexPath string) ([]IndexEntry, error) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var entries []IndexEntry
	switch strings.ToLower(filepath.Ext(indexPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", indexPath, err)
	}

	for i, entry := range entries {
		if entry.Path == "" {
			return nil, fmt.Errorf("index entry %d has no path", i)
		}
	}

	return entries, nil
}

// resolvePath joins a relative entry path onto workDir.
func resolvePath(workDir string, entry IndexEntry) string {
	if filepath.IsAbs(entry.Path) || workDir == "" {
		return entry.Path
	}
	return filepath.Join(workDir, entry.Path)
}
