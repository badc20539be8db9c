// cmd/claimcheck/explore.go
package main

import (
	"github.com/spf13/cobra"

	listproducts "claimcheck/internal/workers/catalog/list-products"
)

func newExploreCmd(c *cli) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.Env(cmd.Context())
			if err != nil {
				return err
			}
			out, err := e.services.Catalog.Execute(cmd.Context(), &listproducts.Input{Refresh: refresh})
			if err != nil {
				return err
			}
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), out.Products)
			}
			renderProducts(cmd.OutOrStdout(), out.Products, out.Cached)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the catalog cache")
	return cmd
}
