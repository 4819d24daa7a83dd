package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AirLinkPros/airlink-backend/internal/findpro"
)

// searchFlags map one-to-one onto the /pros/search query parameters so the
// CLI and the API share ParseQuery.
var searchFlags = []struct{ name, usage string }{
	{"category", "service category, e.g. HVAC"},
	{"radius", "radius in miles (default 15)"},
	{"min-rating", "minimum rating"},
	{"min-years", "minimum years in business"},
	{"hours", "comma-separated hours tags: open_now,open_today,weekends,evenings,early_morning,24_7"},
	{"zip", "recenter on a preset ZIP"},
	{"lat", "center latitude"},
	{"lng", "center longitude"},
	{"sort", "best, distance, rating or experience"},
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		emergency bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the contractor roster",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			v := url.Values{}
			if len(args) == 1 {
				v.Set("q", args[0])
			}
			for _, f := range searchFlags {
				if cmd.Flags().Changed(f.name) {
					val, _ := cmd.Flags().GetString(f.name)
					v.Set(strings.ReplaceAll(f.name, "-", "_"), val)
				}
			}
			if emergency {
				v.Set("emergency", "true")
			}

			q, err := findpro.ParseQuery(v, c.Categories)
			if err != nil {
				return err
			}
			results := findpro.Search(c.Contractors, q)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSERVICES\tRATING\tYEARS\tMILES")
			for _, r := range results {
				p := r.Contractor
				miles := "-"
				if r.Distance != nil {
					miles = fmt.Sprintf("%.1f", *r.Distance)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\n",
					p.ID, p.Name, strings.Join(p.Services, ", "), p.Rating, p.Years, miles)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d result(s), sort=%s\n", len(results), q.Sort)
			return nil
		},
	}

	for _, f := range searchFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().BoolVar(&emergency, "emergency", false, "only emergency or 24/7 contractors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
