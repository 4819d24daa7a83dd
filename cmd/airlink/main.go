// Command airlink is the operator CLI: run searches and rule previews
// against a catalog, export the signals feed, validate catalog files and
// seed demo accounts.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AirLinkPros/airlink-backend/internal/catalog"
)

func main() {
	_ = godotenv.Load(".env.local")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "airlink",
		Short:         "AirLink marketplace tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_PATH"),
		"catalog YAML file (default: embedded demo catalog)")

	root.AddCommand(
		newSearchCmd(opts),
		newSignalsCmd(opts),
		newCatalogCmd(opts),
		newSeedCmd(),
	)
	return root
}

func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(o.catalogPath)
}
