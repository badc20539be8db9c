// cmd/claimcheck/workers.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"claimcheck/pkg/registry"
)

func newWorkersCmd(c *cli) *cobra.Command {
	var category, path string

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the registered worker activities",
		Long: `Lists the activities the worker host registers. With --registry the
file is loaded and validated instead of the built-in registry, which is
how registry edits are checked before they are embedded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				reg *registry.ActivityRegistry
				err error
			)
			if path != "" {
				reg, err = registry.LoadRegistry(path)
			} else {
				reg, err = registry.Load()
			}
			if err != nil {
				return fmt.Errorf("activity registry: %w", err)
			}

			activities := reg.Activities
			if category != "" {
				activities = reg.ByCategory()[category]
			}
			if c.opts.json {
				return printJSON(cmd.OutOrStdout(), activities)
			}
			renderActivities(cmd.OutOrStdout(), activities)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list activities in this category")
	cmd.Flags().StringVar(&path, "registry", "", "load and validate this registry file")
	return cmd
}
