package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List routes and their personal best",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, stop, err := opts.startService(cmd)
			if err != nil {
				return err
			}
			defer stop()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROUTE\tNAME\tSCENE\tBEST\tCAR")
			for _, info := range svc.Routes() {
				best, car := "-", "-"
				if svc.HasPersonalBest(ctx, info.ID) {
					if pb, err := svc.PersonalBest(ctx, info.ID); err == nil {
						best, car = pb.TimeString(), pb.CarName
					} else {
						best = "unreadable"
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.ID, info.Name, info.Scene, best, car)
			}
			return w.Flush()
		},
	}
}
