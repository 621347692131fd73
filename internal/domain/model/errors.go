package model

import "errors"

// Error kinds shared across the ghost racing core. Packages wrap these with
// context; callers match with errors.Is.
var (
	ErrRouteNotFound      = errors.New("route not found")
	ErrNoActiveVehicle    = errors.New("no active vehicle")
	ErrMalformedFile      = errors.New("malformed ghost file")
	ErrFieldOutOfRange    = errors.New("field out of range")
	ErrPathRejected       = errors.New("path rejected")
	ErrFileTooLarge       = errors.New("file too large")
	ErrTooManyFrames      = errors.New("too many frames")
	ErrTooManySharedFiles = errors.New("too many shared files")
	ErrVehicleLost        = errors.New("vehicle lost")
	ErrTimeout            = errors.New("race timeout")
	ErrUserCancelled      = errors.New("user cancelled")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrRouteNotFound, "route_not_found"},
	{ErrNoActiveVehicle, "no_active_vehicle"},
	{ErrMalformedFile, "malformed_file"},
	{ErrFieldOutOfRange, "field_out_of_range"},
	{ErrPathRejected, "path_rejected"},
	{ErrFileTooLarge, "file_too_large"},
	{ErrTooManyFrames, "too_many_frames"},
	{ErrTooManySharedFiles, "too_many_shared_files"},
	{ErrVehicleLost, "vehicle_lost"},
	{ErrTimeout, "timeout"},
	{ErrUserCancelled, "user_cancelled"},
}

// ErrorKind classifies err into a stable label for logs and metrics.
func ErrorKind(err error) string {
	if err == nil {
		return "none"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}
