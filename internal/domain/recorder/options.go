package recorder

import "time"

// Option configures a Recorder.
type Option func(*Recorder)

// WithSampleRate sets samples per second of race time.
func WithSampleRate(hz int) Option {
	return func(r *Recorder) {
		if hz > 0 {
			r.interval = time.Second / time.Duration(hz)
		}
	}
}
