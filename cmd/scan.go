package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/okian/ghostrun/internal/adapters/http/api"
	"github.com/okian/ghostrun/internal/domain/model"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		validOnly bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List ghosts in the shared folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, stop, err := opts.startService(cmd)
			if err != nil {
				return err
			}
			defer stop()

			shared, err := svc.SharedGhosts(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan shared ghosts: %w", err)
			}
			if validOnly {
				shared = lo.Filter(shared, func(m model.SharedGhostMetadata, _ int) bool { return m.IsValid })
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(lo.Map(shared, func(m model.SharedGhostMetadata, _ int) api.SharedGhost {
					return api.NewSharedGhost(m)
				}))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tPLAYER\tROUTE\tTIME\tFRAMES")
			for _, m := range shared {
				file := filepath.Base(m.FilePath)
				if !m.IsValid {
					fmt.Fprintf(w, "%s\t%s\tINVALID\t%s\t\n", file, m.PlayerName, m.Reason)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", file, m.PlayerName, m.RouteID, m.TimeString(), m.FrameCount)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&validOnly, "valid", false, "only list ghosts that can be raced")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// inspectReport is the JSON shape printed by inspect.
type inspectReport struct {
	api.SharedGhost
	CarName   string  `json:"car_name,omitempty"`
	FirstTime float32 `json:"first_frame_time,omitempty"`
	LastTime  float32 `json:"last_frame_time,omitempty"`
	Distance  float32 `json:"distance,omitempty"`
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Validate one shared ghost and print its details",
		Long:  "FILE is a name in the shared folder or a path inside it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, stop, err := opts.startService(cmd)
			if err != nil {
				return err
			}
			defer stop()

			path := args[0]
			if !filepath.IsAbs(path) && filepath.Base(path) == path {
				path = filepath.Join(svc.Store().SharedDir(), path)
			}
			meta := svc.Store().InspectShared(ctx, path)
			rep := inspectReport{SharedGhost: api.NewSharedGhost(meta)}

			if meta.IsValid {
				rec, err := svc.Store().LoadShared(ctx, meta)
				if err != nil {
					rep.Valid = false
					rep.Reason = err.Error()
				} else if n := len(rec.Frames); n > 0 {
					rep.CarName = rec.CarName
					rep.FirstTime = rec.Frames[0].Timestamp
					rep.LastTime = rec.Frames[n-1].Timestamp
					for i := 1; i < n; i++ {
						rep.Distance += rec.Frames[i].Position.Sub(rec.Frames[i-1].Position).Len()
					}
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			if !rep.Valid {
				return fmt.Errorf("%s: %s", filepath.Base(path), rep.Reason)
			}
			return nil
		},
	}
}
