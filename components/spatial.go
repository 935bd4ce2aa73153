package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Body holds a creature's motion state.
type Body struct {
	Heading float32 // radians, clockwise from world -Y; never wrapped
	Speed   float32 // distance per tick
}
