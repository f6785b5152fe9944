package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
)

// Gravity is the downward acceleration applied to loose bodies.
const Gravity = 900.0

const (
	collisionTypeBody cp.CollisionType = iota + 1
	collisionTypeSolid
)

// PhysicsSystem steps a Chipmunk space for loose bodies such as holdables.
// Each body pulls along the gravity its own entity resolves to, so overrides
// apply per body.
type PhysicsSystem struct {
	controller *gravity.Controller
	space      *cp.Space
	entities   map[ecs.Entity]*bodyInfo
	bound      *ecs.World
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	static bool
	mover  *bodyMover
}

// bodyMover exposes a body's world velocity to the controller's momentum
// policy.
type bodyMover struct {
	body *cp.Body
}

func (m *bodyMover) WorldFrame() bool { return true }

func (m *bodyMover) Velocity() (float64, float64) {
	v := m.body.Velocity()
	return v.X, v.Y
}

func (m *bodyMover) SetVelocity(x, y float64) {
	m.body.SetVelocity(x, y)
}

func NewPhysicsSystem(c *gravity.Controller) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: Gravity})
	return &PhysicsSystem{
		controller: c,
		space:      space,
		entities:   make(map[ecs.Entity]*bodyInfo),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.bind(w)
	ps.syncEntities(w)
	ps.space.Step(w.Delta())
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) bind(w *ecs.World) {
	if ps.bound == w {
		return
	}
	ps.bound = w
	ecs.OnDestroy(w, func(w *ecs.World, e ecs.Entity) {
		ps.removeEntity(e)
	})
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if _, ok := ps.entities[e]; ok {
			return
		}
		ps.entities[e] = ps.createBodyInfo(e, pb, t)
	})
}

func (ps *PhysicsSystem) createBodyInfo(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) *bodyInfo {
	if pb.Static {
		bb := cp.BB{L: t.X, B: t.Y, R: t.X + pb.Width, T: t.Y + pb.Height}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(pb.Friction)
		shape.SetElasticity(pb.Elasticity)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		pb.Body = ps.space.StaticBody
		pb.Shape = shape
		return &bodyInfo{body: ps.space.StaticBody, shape: shape, static: true}
	}

	mass := pb.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForBox(mass, pb.Width, pb.Height))
	body.UserData = e
	scale := pb.GravityScale
	body.SetVelocityUpdateFunc(func(b *cp.Body, g cp.Vector, damping, dt float64) {
		g = g.Mult(scale)
		if ps.controller.ShouldInvert(e) {
			g = g.Neg()
		}
		cp.BodyUpdateVelocity(b, g, damping, dt)
	})

	shape := cp.NewBox(body, pb.Width, pb.Height, 0)
	shape.SetFriction(pb.Friction)
	shape.SetElasticity(pb.Elasticity)
	shape.SetCollisionType(collisionTypeBody)
	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	pb.Body = body
	pb.Shape = shape
	placeBody(pb, t)

	mover := &bodyMover{body: body}
	ps.controller.Track(e, mover)
	return &bodyInfo{body: body, shape: shape, mover: mover}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Static || pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		t.X = pos.X - pb.Width/2
		t.Y = pos.Y - pb.Height/2
	})
}

func (ps *PhysicsSystem) removeEntity(e ecs.Entity) {
	info, ok := ps.entities[e]
	if !ok {
		return
	}
	delete(ps.entities, e)
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
	}
	if !info.static && info.body != nil {
		ps.space.RemoveBody(info.body)
	}
	if info.mover != nil {
		ps.controller.Untrack(info.mover)
	}
}

// placeBody moves a body so its box matches the transform.
func placeBody(pb *component.PhysicsBody, t *component.Transform) {
	pb.Body.SetPosition(cp.Vector{X: t.X + pb.Width/2, Y: t.Y + pb.Height/2})
}
