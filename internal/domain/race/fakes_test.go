package race

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/internal/domain/playback"
)

type fakeVehicle struct {
	pos         mgl32.Vec3
	rot         mgl32.Quat
	speed       float32
	immobilized bool
	releases    int
	placements  int
}

func (v *fakeVehicle) Position() mgl32.Vec3 { return v.pos }
func (v *fakeVehicle) Rotation() mgl32.Quat { return v.rot }
func (v *fakeVehicle) SteerAngle() float32  { return 0 }
func (v *fakeVehicle) Speed() float32       { return v.speed }
func (v *fakeVehicle) EngineRPM() float32   { return 4000 }
func (v *fakeVehicle) Gear() int32          { return 2 }
func (v *fakeVehicle) BrakeInput() float32  { return 0 }
func (v *fakeVehicle) BoostActive() bool    { return false }
func (v *fakeVehicle) HeadlightsOn() bool   { return true }
func (v *fakeVehicle) Name() string         { return "AE86" }

func (v *fakeVehicle) PlaceAt(pos mgl32.Vec3, rot mgl32.Quat) {
	v.pos, v.rot = pos, rot
	v.placements++
}

func (v *fakeVehicle) Immobilize() {
	v.immobilized = true
	v.speed = 0
}

func (v *fakeVehicle) Release() {
	v.immobilized = false
	v.releases++
}

type garage struct{ car *fakeVehicle }

func (g *garage) ActiveVehicle() Vehicle {
	if g.car == nil {
		return nil
	}
	return g.car
}

type memStore struct {
	personal  map[string]*model.GhostRecording
	shared    map[string]*model.GhostRecording
	corrupt   map[string]bool
	saves     int
	saveErr   error
	deleted   []string
	sharedErr error
	loadCalls int
}

func newMemStore() *memStore {
	return &memStore{
		personal: map[string]*model.GhostRecording{},
		shared:   map[string]*model.GhostRecording{},
		corrupt:  map[string]bool{},
	}
}

func (s *memStore) PersonalExists(_ context.Context, routeID string) bool {
	_, ok := s.personal[routeID]
	return ok || s.corrupt[routeID]
}

func (s *memStore) LoadPersonal(_ context.Context, routeID string) (*model.GhostRecording, error) {
	s.loadCalls++
	if s.corrupt[routeID] {
		return nil, fmt.Errorf("load %s: %w", routeID, model.ErrMalformedFile)
	}
	rec, ok := s.personal[routeID]
	if !ok {
		return nil, fmt.Errorf("load %s: not found", routeID)
	}
	return rec, nil
}

func (s *memStore) LoadShared(_ context.Context, meta model.SharedGhostMetadata) (*model.GhostRecording, error) {
	if s.sharedErr != nil {
		return nil, s.sharedErr
	}
	rec, ok := s.shared[meta.FilePath]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", meta.FilePath, model.ErrPathRejected)
	}
	return rec, nil
}

func (s *memStore) DeletePersonal(_ context.Context, routeID string) error {
	delete(s.personal, routeID)
	s.deleted = append(s.deleted, routeID)
	return nil
}

func (s *memStore) SavePersonal(_ context.Context, rec *model.GhostRecording) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.personal[rec.RouteID] = rec
	return nil
}

type fakeView struct {
	spawned  bool
	spawns   int
	applied  int
	visible  bool
	last     playback.Pose
	spawnErr error
}

func (v *fakeView) Spawn(mgl32.Vec3, mgl32.Quat) error {
	if v.spawnErr != nil {
		return v.spawnErr
	}
	v.spawned = true
	v.spawns++
	return nil
}

func (v *fakeView) Apply(p playback.Pose) {
	v.applied++
	v.last = p
}

func (v *fakeView) SetVisible(b bool) { v.visible = b }
func (v *fakeView) Despawn()          { v.spawned = false }

type board struct {
	countdowns []string
	messages   []string
}

func (b *board) Countdown(text string) { b.countdowns = append(b.countdowns, text) }
func (b *board) Message(text string)   { b.messages = append(b.messages, text) }

// ghostOf builds a recording along +X lasting total seconds at 60 frames per second.
// deferredPersister accepts saves and only writes them to the store on Flush.
type deferredPersister struct {
	store    *memStore
	queued   []*model.GhostRecording
	flushes  int
	flushErr error
}

func (p *deferredPersister) SavePersonal(_ context.Context, rec *model.GhostRecording) error {
	p.queued = append(p.queued, rec)
	return nil
}

func (p *deferredPersister) Flush(ctx context.Context) error {
	p.flushes++
	if p.flushErr != nil {
		return p.flushErr
	}
	for _, rec := range p.queued {
		if err := p.store.SavePersonal(ctx, rec); err != nil {
			return err
		}
	}
	p.queued = nil
	return nil
}

func ghostOf(routeID string, total float32) *model.GhostRecording {
	rec := &model.GhostRecording{RouteID: routeID, CarName: "ghost", TotalTime: total}
	n := int(total * 60)
	for i := 0; i <= n; i++ {
		rec.Frames = append(rec.Frames, model.GhostFrame{
			Timestamp: float32(i) / 60,
			Position:  mgl32.Vec3{float32(i), 0, 0},
			Rotation:  mgl32.QuatIdent(),
			Speed:     60,
		})
	}
	return rec
}
