package driver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile lists gitignore-style patterns of law files Discover skips.
const IgnoreFile = ".lawabbrevignore"

var lawFileSuffixes = []string{".xml", ".xml.gz", ".xml.zst"}

// Discover builds an index from the law files under workDir, in path order.
// Hidden files and directories are skipped, as are paths matched by the
// IgnoreFile in workDir. Law numbers are left empty so that the number in
// each document is used.
func Discover(workDir string) ([]IndexEntry, error) {
	gi := loadIgnoreFile(workDir)

	var entries []IndexEntry
	err := filepath.WalkDir(workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != workDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !isLawFile(name) {
			return nil
		}

		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		entries = append(entries, IndexEntry{Path: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

func isLawFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range lawFileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func loadIgnoreFile(workDir string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(workDir, IgnoreFile))
	if err != nil {
		return nil
	}
	return gi
}
