// Package route holds the static catalog of raceable routes.
//
// The catalog is built once at startup and shared read-only afterwards.
package route

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultFinishSize is the trigger volume used when a route defines a custom finish point.
var DefaultFinishSize = mgl32.Vec3{30, 10, 30}

// Info describes the start and finish geometry of one route.
type Info struct {
	ID         string
	Name       string
	Scene      string
	StartP1    string // start point used for a first run and for the ghost
	StartP2    string // start point used by the player when racing a ghost
	FinishZone string

	FallbackP1       mgl32.Vec3
	FallbackP2       mgl32.Vec3
	FallbackRotation mgl32.Quat

	// CustomFinish, when set, replaces the scene's finish zone with a trigger box.
	CustomFinish     *mgl32.Vec3
	CustomFinishSize mgl32.Vec3
}

// StartPose returns where the player starts. A first run uses P1, a ghost race P2.
func (i Info) StartPose(firstRun bool) (mgl32.Vec3, mgl32.Quat) {
	if firstRun {
		return i.FallbackP1, i.FallbackRotation
	}
	return i.FallbackP2, i.FallbackRotation
}

// GhostPose returns where the ghost is spawned.
func (i Info) GhostPose() (mgl32.Vec3, mgl32.Quat) {
	return i.FallbackP1, i.FallbackRotation
}

// Catalog maps route ids to Info, preserving definition order for menus.
type Catalog struct {
	routes *orderedmap.OrderedMap[string, Info]
}

// NewCatalog builds a catalog from the given routes. Later duplicates replace earlier ones.
func NewCatalog(infos ...Info) *Catalog {
	c := &Catalog{routes: orderedmap.NewOrderedMap[string, Info]()}
	for _, info := range infos {
		if info.CustomFinish != nil && info.CustomFinishSize == (mgl32.Vec3{}) {
			info.CustomFinishSize = DefaultFinishSize
		}
		c.routes.Set(info.ID, info)
	}
	return c
}

// Lookup returns the route for id.
func (c *Catalog) Lookup(id string) (Info, bool) {
	return c.routes.Get(id)
}

// Has reports whether id is a known route.
func (c *Catalog) Has(id string) bool {
	_, ok := c.routes.Get(id)
	return ok
}

// Len returns the number of routes.
func (c *Catalog) Len() int {
	return c.routes.Len()
}

// IDs returns route ids in definition order.
func (c *Catalog) IDs() []string {
	return c.routes.Keys()
}

// All returns every route in definition order.
func (c *Catalog) All() []Info {
	out := make([]Info, 0, c.routes.Len())
	for el := c.routes.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Euler builds a rotation from Euler angles in degrees, applied Z, then X, then Y.
func Euler(x, y, z float32) mgl32.Quat {
	qy := mgl32.QuatRotate(mgl32.DegToRad(y), mgl32.Vec3{0, 1, 0})
	qx := mgl32.QuatRotate(mgl32.DegToRad(x), mgl32.Vec3{1, 0, 0})
	qz := mgl32.QuatRotate(mgl32.DegToRad(z), mgl32.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}
