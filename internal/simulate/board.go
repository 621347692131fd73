package simulate

import (
	"context"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/playback"
	"github.com/okian/ghostrun/pkg/logger"
)

// Board records the HUD text shown during a run.
type Board struct {
	mu         sync.Mutex
	countdowns []string
	messages   []string
	log        logger.Logger
}

// NewBoard returns an empty board that echoes text to log.
func NewBoard(log logger.Logger) *Board {
	if log == nil {
		log = logger.Discard()
	}
	return &Board{log: log}
}

// Countdown records a countdown label.
func (b *Board) Countdown(text string) {
	b.mu.Lock()
	b.countdowns = append(b.countdowns, text)
	b.mu.Unlock()
	if text != "" {
		b.log.Debug(context.Background(), "countdown", logger.String("text", text))
	}
}

// Message records an outcome or cancellation banner.
func (b *Board) Message(text string) {
	b.mu.Lock()
	b.messages = append(b.messages, text)
	b.mu.Unlock()
	if text != "" {
		b.log.Info(context.Background(), "banner", logger.String("text", text))
	}
}

// Countdowns returns every countdown label in order, including clears.
func (b *Board) Countdowns() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.countdowns...)
}

// Messages returns every banner in order, including clears.
func (b *Board) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

// Reset forgets recorded text.
func (b *Board) Reset() {
	b.mu.Lock()
	b.countdowns, b.messages = nil, nil
	b.mu.Unlock()
}

// View tracks the ghost car the race would draw.
type View struct {
	mu       sync.Mutex
	spawned  bool
	visible  bool
	spawns   int
	applied  int
	last     playback.Pose
	spawnPos mgl32.Vec3
}

// NewView returns a view with no ghost.
func NewView() *View {
	return &View{visible: true}
}

// Spawn places the ghost car.
func (v *View) Spawn(pos mgl32.Vec3, rot mgl32.Quat) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spawned = true
	v.spawns++
	v.spawnPos = pos
	v.last = playback.Pose{Position: pos, Rotation: rot}
	return nil
}

// Apply moves the ghost car to pose.
func (v *View) Apply(pose playback.Pose) {
	v.mu.Lock()
	v.applied++
	v.last = pose
	v.mu.Unlock()
}

// SetVisible shows or hides the ghost car.
func (v *View) SetVisible(visible bool) {
	v.mu.Lock()
	v.visible = visible
	v.mu.Unlock()
}

// Despawn removes the ghost car.
func (v *View) Despawn() {
	v.mu.Lock()
	v.spawned = false
	v.mu.Unlock()
}

// Stats reports spawn and pose counts and the last applied pose.
func (v *View) Stats() (spawns, applied int, last playback.Pose) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spawns, v.applied, v.last
}

// Spawned reports whether a ghost car is present.
func (v *View) Spawned() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spawned
}

// Visible reports whether the ghost car is shown.
func (v *View) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}
