package simulate

import "github.com/okian/ghostrun/internal/domain/race"

// Garage hands the race the car currently driven by the player.
type Garage struct {
	car    *Car
	parked bool
}

// NewGarage returns a garage with car in use.
func NewGarage(car *Car) *Garage {
	return &Garage{car: car}
}

// ActiveVehicle returns the car, or nil when the player left it.
func (g *Garage) ActiveVehicle() race.Vehicle {
	if g.parked || g.car == nil {
		return nil
	}
	return g.car
}

// Park simulates the player leaving the car.
func (g *Garage) Park() { g.parked = true }

// Unpark puts the player back in the car.
func (g *Garage) Unpark() { g.parked = false }
