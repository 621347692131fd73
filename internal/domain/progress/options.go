package progress

// Option configures a Tracker.
type Option func(*Tracker)

// WithWindow sets how many frames ahead of the current index are searched.
func WithWindow(frames int) Option {
	return func(t *Tracker) {
		if frames > 0 {
			t.window = frames
		}
	}
}

// WithThreshold sets the maximum distance for a match to count.
func WithThreshold(d float32) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.threshold = d
		}
	}
}
