package playback

// Option configures a Player.
type Option func(*Player)

// WithWheelRadius sets the radius used to turn speed into wheel spin.
func WithWheelRadius(r float32) Option {
	return func(p *Player) {
		if r > 0 {
			p.wheelRadius = r
		}
	}
}
