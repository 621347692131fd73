// Package progress matches the live player's position against a ghost's
// timeline to drive the ahead/behind timer.
package progress

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/model"
)

// Defaults for the forward search.
const (
	DefaultWindow    = 300
	DefaultThreshold = float32(50)
)

// Tracker holds the index of the ghost frame the player has spatially reached.
// The index never decreases.
type Tracker struct {
	frames    []model.GhostFrame
	index     int
	window    int
	threshold float32
}

// New creates a tracker over rec's frames.
func New(rec *model.GhostRecording, opts ...Option) *Tracker {
	t := &Tracker{window: DefaultWindow, threshold: DefaultThreshold}
	if rec != nil {
		t.frames = rec.Frames
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Index returns the tracked frame index.
func (t *Tracker) Index() int { return t.index }

// Update searches [index, index+window] for the frame closest to pos and moves
// forward to it when it is ahead and nearer than the threshold.
func (t *Tracker) Update(pos mgl32.Vec3) int {
	if len(t.frames) == 0 {
		return t.index
	}

	end := min(len(t.frames)-1, t.index+t.window)
	best, bestDist := t.index, float32(math.MaxFloat32)
	for i := t.index; i <= end; i++ {
		if d := pos.Sub(t.frames[i].Position).Len(); d < bestDist {
			best, bestDist = i, d
		}
	}

	if best > t.index && bestDist < t.threshold {
		t.index = best
	}
	return t.index
}

// Delta returns live elapsed time minus the ghost's time at the tracked frame.
// Negative means the player is ahead.
func (t *Tracker) Delta(elapsed time.Duration) (float32, bool) {
	if len(t.frames) == 0 {
		return 0, false
	}
	return float32(elapsed.Seconds()) - t.frames[t.index].Timestamp, true
}
