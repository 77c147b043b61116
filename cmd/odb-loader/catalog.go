package main

import (
	"encoding/json"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	var (
		namesOnly bool
		only      []string
		exclude   []string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the selected catalog targets as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.resolve(cmd, only, exclude)
			if err != nil {
				return configError(err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if namesOnly {
				return enc.Encode(catalog.Names(s.targets))
			}
			return enc.Encode(s.targets)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&namesOnly, "names", false, "print only target names")
	f.StringSliceVar(&only, "only", nil, "glob patterns of target names to include")
	f.StringSliceVar(&exclude, "exclude", nil, "glob patterns of target names to skip")
	return cmd
}
