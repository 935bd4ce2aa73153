package game

// Snapshot is a read-only copy of the simulation state for renderers and
// stream clients. Mutating it never affects the simulation.
type Snapshot struct {
	RunID              string         `json:"run_id"`
	Generation         int            `json:"generation"`
	Tick               int            `json:"tick"`
	TicksPerGeneration int            `json:"ticks_per_generation"`
	Width              float32        `json:"width"`
	Height             float32        `json:"height"`
	Creatures          []CreatureView `json:"creatures"`
	Foods              []FoodView     `json:"foods"`
}

// CreatureView is the observable state of one creature.
type CreatureView struct {
	ID        uint32  `json:"id"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Heading   float32 `json:"heading"`
	Speed     float32 `json:"speed"`
	Eaten     int     `json:"eaten"`
	Intensity float32 `json:"intensity"`
}

// FoodView is the observable state of one food item.
type FoodView struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Eaten bool    `json:"eaten"`
}
