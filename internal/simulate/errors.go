package simulate

import "errors"

// Sentinel errors for the harness.
var (
	ErrInvalidPlan    = errors.New("invalid simulation plan")
	ErrRaceNotStarted = errors.New("race did not start")
	ErrRaceUnfinished = errors.New("race did not return to idle")
)
