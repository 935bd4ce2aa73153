// Package components defines ECS components for the simulation.
package components

// Creature bundles identity and fitness for one agent.
// Its brain lives outside the ECS, keyed by ID.
type Creature struct {
	ID        uint32
	Eaten     int     // food eaten this generation; the fitness
	Intensity float32 // min(Eaten/MaxEat, 1), drives the render color
}

// Food marks a food item. Eaten is only set when food does not respawn.
type Food struct {
	Eaten bool
}
