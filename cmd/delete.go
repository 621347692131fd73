package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/ghostrun/internal/adapters/repository"
	"github.com/okian/ghostrun/internal/domain/model"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ROUTE",
		Short: "Delete the personal best of a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			routeID := args[0]
			svc, stop, err := opts.startService(cmd)
			if err != nil {
				return err
			}
			defer stop()

			if !svc.Catalog().Has(routeID) {
				return fmt.Errorf("%q: %w", routeID, model.ErrRouteNotFound)
			}
			err = svc.Store().DeletePersonal(ctx, routeID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no personal best\n", routeID)
				return nil
			case err != nil:
				return fmt.Errorf("delete %s: %w", routeID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted personal best for %s\n", routeID)
			return nil
		},
	}
}
