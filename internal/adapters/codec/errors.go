package codec

import "errors"

// Sentinel errors specific to the codec. Validation failures wrap the
// model error kinds instead.
var (
	ErrNilRecording = errors.New("nil recording")
)
