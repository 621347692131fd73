package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ghostrun/internal/simulate"
	"github.com/okian/ghostrun/pkg/logger"
)

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var (
		plan       simulate.Plan
		sharedFile string
		speed      float32
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a scripted race against the stored ghosts",
		Long: "Runs one race without a game engine. The scripted car drives straight\n" +
			"ahead and crosses the finish line at --finish race time.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			h := simulate.NewHarness(
				simulate.WithLogger(logger.Named("simulate")),
				simulate.WithTickRate(opts.cfg.TickRate),
				simulate.WithCar(simulate.NewCar("", speed)),
			)
			svc, stop, err := opts.startService(cmd, h.ServiceOptions()...)
			if err != nil {
				return err
			}
			defer stop()

			if sharedFile != "" {
				path := sharedFile
				if filepath.Base(path) == path {
					path = filepath.Join(svc.Store().SharedDir(), path)
				}
				meta := svc.Store().InspectShared(ctx, path)
				if !meta.IsValid {
					return fmt.Errorf("shared ghost %s: %s", filepath.Base(path), meta.Reason)
				}
				plan.Shared = &meta
			}

			rep, err := h.Run(ctx, svc, plan)
			if rep != nil {
				printReport(cmd, rep)
			}
			if errors.Is(err, simulate.ErrRaceNotStarted) {
				return fmt.Errorf("%w (see log for the reason)", err)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&plan.RouteID, "route", "Akina_Downhill", "route to race")
	flags.StringVar(&sharedFile, "shared", "", "race this shared ghost instead of the personal best")
	flags.DurationVar(&plan.FinishAt, "finish", 90*time.Second, "race time at which the finish line is crossed")
	flags.DurationVar(&plan.CancelAt, "cancel-at", 0, "cancel at this race time")
	flags.DurationVar(&plan.LeaveCarAt, "leave-at", 0, "leave the car at this race time")
	flags.BoolVar(&plan.HideGhost, "hide-ghost", false, "hide the ghost car")
	flags.Float32Var(&speed, "speed", simulate.DefaultSpeed, "scripted car speed in m/s")
	return cmd
}

func printReport(cmd *cobra.Command, rep *simulate.Report) {
	out := cmd.OutOrStdout()
	states := make([]string, len(rep.States))
	for i, s := range rep.States {
		states[i] = s.String()
	}
	fmt.Fprintf(out, "route:    %s\n", rep.RouteID)
	fmt.Fprintf(out, "race:     %s\n", rep.RaceID)
	fmt.Fprintf(out, "states:   %s\n", strings.Join(states, " -> "))
	fmt.Fprintf(out, "outcome:  %s\n", rep.Outcome())
	fmt.Fprintf(out, "time:     %s\n", rep.RaceTime.Round(time.Millisecond))
	fmt.Fprintf(out, "distance: %.1fm\n", rep.Distance)
	if rep.Result != nil && rep.Result.Recording != nil {
		fmt.Fprintf(out, "frames:   %d\n", len(rep.Result.Recording.Frames))
	}
	if rep.Cancellation != nil {
		fmt.Fprintf(out, "reason:   %v\n", rep.Cancellation.Reason)
	}
	if banner := rep.Banner(); banner != "" {
		fmt.Fprintf(out, "\n%s\n", banner)
	}
}
