package component

import "github.com/jakecoffman/cp"

// PhysicsBody is a loose Chipmunk2D body. Its gravity follows the effective
// gravity mode of the owning entity, scaled by GravityScale.
type PhysicsBody struct {
	Body         *cp.Body
	Shape        *cp.Shape
	Width        float64
	Height       float64
	Mass         float64
	Friction     float64
	Elasticity   float64
	GravityScale float64
	Static       bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
