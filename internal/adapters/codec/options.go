package codec

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxFrames overrides the frame count ceiling.
func WithMaxFrames(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxFrames = n
		}
	}
}

// WithMaxStringLength overrides the byte cap on route and car names.
func WithMaxStringLength(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxString = n
		}
	}
}
