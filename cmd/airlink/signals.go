package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/AirLinkPros/airlink-backend/internal/signals"
)

func newSignalsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Work with the signals feed",
	}
	cmd.AddCommand(newSignalsPreviewCmd(opts), newSignalsExportCmd(opts))
	return cmd
}

// readRule decodes a rule file. YAML is a superset of JSON, so both work.
func readRule(path string) (signals.Rule, error) {
	var rule signals.Rule
	data, err := os.ReadFile(path)
	if err != nil {
		return rule, fmt.Errorf("read rule: %w", err)
	}
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return rule, fmt.Errorf("invalid rule %s: %w", path, err)
	}
	if err := rule.Validate(); err != nil {
		return rule, fmt.Errorf("invalid rule %s: %w", path, err)
	}
	return rule, nil
}

func newSignalsPreviewCmd(opts *rootOptions) *cobra.Command {
	var (
		rulePath string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "preview --rule rule.yaml",
		Short: "Count the feed events a rule would match",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			rule, err := readRule(rulePath)
			if err != nil {
				return err
			}

			matches := signals.Filter(c.Signals, rule)
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"count":   len(matches),
					"matches": matches,
				})
			}

			fmt.Fprintf(out, "%d matching event(s)\n", len(matches))
			for _, e := range matches {
				fmt.Fprintf(out, "  %s  %-10s %s (%s)\n", e.OccurredAt, e.Type, e.Subject, e.Jurisdiction)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rulePath, "rule", "", "rule file (YAML or JSON)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preview as JSON")
	_ = cmd.MarkFlagRequired("rule")
	return cmd
}

func newSignalsExportCmd(opts *rootOptions) *cobra.Command {
	var output, text, typ, jurisdiction string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered feed as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			query, err := signals.ParseFeedQuery(text, typ, jurisdiction)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return signals.WriteCSV(w, signals.FilterFeed(c.Signals, query))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", signals.CSVFilename, `output file, "-" for stdout`)
	cmd.Flags().StringVar(&text, "q", "", "free-text filter")
	cmd.Flags().StringVar(&typ, "type", "", "event type or ALL")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "exact jurisdiction or ALL")
	return cmd
}
