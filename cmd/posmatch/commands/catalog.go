package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCatalogCommand(opts *globalOptions) *cobra.Command {
	var projection bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List catalog products",
		Long:  "List catalog products in declaration order, or print the projection sent to the remote recommender.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, a, log, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer a.Close()

			if projection {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a.Catalog.Projection())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "IDENTIFIER\tNAME\tCATEGORY\tSIZE")
			for _, p := range a.Catalog.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Identifier, p.Name, p.PrimaryCategory, p.Size)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&projection, "projection", false, "print the remote recommender projection as JSON")
	return cmd
}
