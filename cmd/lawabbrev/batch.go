package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/coolbeans/lawabbrev/pkg/config"
	"github.com/coolbeans/lawabbrev/pkg/driver"
	"github.com/coolbeans/lawabbrev/pkg/store"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract abbreviations from every law in an index file",
		Long: `Process every law listed in an index file (JSON or YAML list of
{law_number, path, title}) and write a catalog of citation abbreviations
keyed by law number, plus a log of fragments that need manual review.
Without --index, every .xml, .xml.gz and .xml.zst file under --work is
processed except those matched by a .lawabbrevignore file there.

Documents that cannot be read or parsed are reported and skipped.

Example:
  lawabbrev batch --work ./xml --index index.yaml --output abbrev.json
  lawabbrev batch --index index.json --database runs.db --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reportJSON, _ := cmd.Flags().GetBool("report-json")

			entries, source, err := loadEntries(cfg.Index, cfg.WorkDir)
			if err != nil {
				return err
			}

			logger := cfg.Logger()
			logger.Info("starting batch", "source", source, "documents", len(entries), "workers", cfg.Workers)

			batch := driver.NewBatch(newDriver(cfg), driver.BatchConfig{
				WorkDir: cfg.WorkDir,
				Workers: cfg.Workers,
				Logger:  logger,
			})
			report, err := batch.Run(cmd.Context(), entries)
			if err != nil {
				return err
			}

			catalog := store.NewCatalog()
			errorLog := store.NewErrorLog()
			for _, result := range report.Results {
				catalog.Add(result)
				errorLog.Add(result)
			}

			format := cfg.OutputFormat()
			catalogPath := cfg.CatalogPath()
			if err := catalog.WriteFile(catalogPath, format); err != nil {
				return err
			}
			if err := errorLog.WriteFile(cfg.ErrorOutput, format); err != nil {
				return err
			}

			if cfg.Database != "" {
				db, err := store.Open(cfg.Database, logger)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.SaveRun(cmd.Context(), report); err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
			}

			if reportJSON {
				fmt.Println(driver.FormatBatchReportJSON(report))
			} else {
				fmt.Print(driver.FormatBatchReport(report))
				fmt.Printf("\nCatalog: %s (%d abbreviations in %d laws)\n", catalogPath, catalog.Len(), len(catalog.LawNumbers()))
				fmt.Printf("Errors:  %s (%d fragments)\n", cfg.ErrorOutput, errorLog.Len())
				if cfg.Database != "" {
					fmt.Printf("Database: %s (run %s)\n", cfg.Database, report.RunID)
				}
			}
			return nil
		},
	}

	addExtractFlags(cmd)
	cmd.Flags().StringP("work", "w", ".", "Directory holding the law XML files")
	cmd.Flags().StringP("index", "i", "", "Index file listing the laws to process")
	cmd.Flags().StringP("output", "o", "", "Catalog output file (default: "+config.DefaultCatalogPath+")")
	cmd.Flags().StringP("error-output", "e", "errors.json", "Fragment error log output file")
	cmd.Flags().String("database", "", "SQLite database to record the run in")
	cmd.Flags().Int("workers", 4, "Documents processed concurrently")
	cmd.Flags().Bool("report-json", false, "Print the batch report as JSON")
	return cmd
}

// loadEntries reads the index file, or discovers law files in workDir when
// no index is configured. It returns the entries and a description of where
// they came from.
func loadEntries(index, workDir string) ([]driver.IndexEntry, string, error) {
	if index == "" {
		entries, err := driver.Discover(workDir)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan %s: %w", workDir, err)
		}
		if len(entries) == 0 {
			return nil, "", fmt.Errorf("no law files found in %s (set --index to use an index file)", workDir)
		}
		return entries, workDir, nil
	}

	indexPath := index
	if !filepath.IsAbs(indexPath) && workDir != "" {
		if candidate := filepath.Join(workDir, indexPath); fileExists(candidate) {
			indexPath = candidate
		}
	}
	entries, err := driver.LoadIndex(indexPath)
	if err != nil {
		return nil, "", err
	}
	return entries, indexPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
