package pathsafe

import "errors"

// Sentinel errors for validator construction.
var (
	ErrRootNotDirectory = errors.New("root is not a directory")
)
