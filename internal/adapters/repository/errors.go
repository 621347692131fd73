package repository

import "errors"

// Sentinel errors for ghost storage. Decode and path problems wrap the model
// error kinds instead.
var (
	ErrNotFound     = errors.New("ghost not found")
	ErrInvalidRoute = errors.New("invalid route id for a file name")
	ErrRouteChanged = errors.New("shared ghost route does not match its listing")
)
