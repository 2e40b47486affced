package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coolbeans/lawabbrev/pkg/config"
	"github.com/coolbeans/lawabbrev/pkg/driver"
	"github.com/coolbeans/lawabbrev/pkg/lawxml"
	"github.com/coolbeans/lawabbrev/pkg/scope"
	"github.com/coolbeans/lawabbrev/pkg/store"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lawabbrev",
		Short: "Extract abbreviation definitions from Japanese statutes",
		Long: `lawabbrev reads statutes in the e-Gov law XML format and collects the
abbreviations they define, such as

  地方自治法（昭和二十二年法律第六十七号。以下「自治法」という。）

Each abbreviation is recorded with the cited law number, the scope
qualifier (この条, 次項, 第五条から第七条まで, ...) and the position of
the definition down to article, paragraph, item and sub-item.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./lawabbrev.yaml or ~/.config/lawabbrev/lawabbrev.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(textCmd())
	rootCmd.AddCommand(scopeCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// loadConfig resolves and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "citation", "Extractors to run: citation, generic or both")
	cmd.Flags().String("format", "json", "Output format: json or yaml")
	cmd.Flags().Bool("parse-scopes", false, "Validate the scope qualifier of citation records")
}

func newDriver(cfg *config.Config) *driver.Driver {
	return driver.New(driver.Options{
		Mode:                cfg.ExtractMode(),
		ParseCitationScopes: cfg.ParseScopes,
		Logger:              cfg.Logger(),
	})
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <law.xml>",
		Short: "Extract abbreviations from one law XML file",
		Long: `Extract abbreviations from one law XML file. Files ending in .gz or .zst
are decompressed on the fly.

Example:
  lawabbrev extract 322AC0000000067.xml
  lawabbrev extract --mode both --format yaml law.xml.gz -o out.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			lawNumber, _ := cmd.Flags().GetString("law-number")

			file, err := lawxml.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			result, err := newDriver(cfg).Traverse(cmd.Context(), lawNumber, lawxml.NewDecoder(file))
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", args[0], err)
			}

			data, err := store.Encode(result, cfg.OutputFormat())
			if err != nil {
				return err
			}
			return writeOutput(cfg.Output, data)
		},
	}

	addExtractFlags(cmd)
	cmd.Flags().String("law-number", "", "Law number to stamp on records (default: the <LawNum> of the file)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	return cmd
}

func textCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text [file]",
		Short: "Extract abbreviations from plain text",
		Long: `Extract abbreviations from a single piece of statute text read from a
file or from stdin. The whole input is treated as one text fragment with
no structural position.

Example:
  echo '（平成十五年法律第五十七号。以下「個人情報保護法」という。）' | lawabbrev text`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			lawNumber, _ := cmd.Flags().GetString("law-number")

			var reader io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer file.Close()
				reader = file
			}
			data, err := io.ReadAll(reader)
			if err != nil {
				return fmt.Errorf("failed to read text: %w", err)
			}

			text := strings.Join(strings.Fields(string(data)), "")
			stream := lawxml.NewSliceStream(lawxml.Text(text))
			result, err := newDriver(cfg).Traverse(cmd.Context(), lawNumber, stream)
			if err != nil {
				return err
			}

			out, err := store.Encode(result, cfg.OutputFormat())
			if err != nil {
				return err
			}
			return writeOutput(cfg.Output, out)
		},
	}

	addExtractFlags(cmd)
	cmd.Flags().String("law-number", "", "Law number to stamp on records")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	return cmd
}

func scopeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope <qualifier>...",
		Short: "Parse scope qualifiers",
		Long: `Parse the qualifier that precedes において in an abbreviation definition.

Example:
  lawabbrev scope この条 第五条から第七条まで 附則第三条`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			parser := scope.NewParser()

			failed := 0
			results := make(map[string][]scope.Note, len(args))
			for _, qualifier := range args {
				notes, err := parser.Parse(qualifier)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s: %v\n", qualifier, err)
					continue
				}
				results[qualifier] = notes
				if !asJSON {
					rendered := make([]string, len(notes))
					for i, note := range notes {
						rendered[i] = note.String()
					}
					fmt.Printf("%s\t%s\n", qualifier, strings.Join(rendered, "; "))
				}
			}

			if asJSON {
				data, err := store.Encode(results, store.FormatJSON)
				if err != nil {
					return err
				}
				if err := writeOutput("", data); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d qualifiers could not be parsed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the parsed notes as JSON")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lawabbrev %s\n", version)
		},
	}
}
