package race

import "errors"

// Sentinel errors for race requests. Route and vehicle problems wrap the
// model error kinds.
var (
	ErrRaceInProgress  = errors.New("race already in progress")
	ErrInvalidShared   = errors.New("shared ghost is not valid")
	ErrMissingStore    = errors.New("ghost store not configured")
	ErrUnknownInput    = errors.New("unknown input")
	ErrNothingToDelete = errors.New("no personal ghost to delete")
)
