package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect catalog files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Parse and validate a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.catalogPath = args[0]
			}
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"ok: %d categories, %d contractors, %d signals, %d testimonials, %d messages, %d leads\n",
				len(c.Categories), len(c.Contractors), len(c.Signals), len(c.Testimonials), len(c.Messages), len(c.Leads))
			return nil
		},
	})
	return cmd
}
